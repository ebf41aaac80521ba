// Package codegen builds an in-memory model of the Go bindings for compiled
// tables and renders it to source files.
package codegen

import "strings"

// Type is a Go type expression as it appears in generated source.
type Type struct {
	Name    string // e.g. "string", "map[string]*HeroData", "bytebuffer.Reader"
	Pointer bool
}

func (t Type) String() string {
	if t.Pointer {
		return "*" + t.Name
	}
	return t.Name
}

// Named returns a value type.
func Named(name string) Type { return Type{Name: name} }

// PointerTo returns a pointer type.
func PointerTo(name string) Type { return Type{Name: name, Pointer: true} }

// Property is a struct field, or a read-only accessor over one.
type Property struct {
	Name  string // accessor name; unused for internal storage
	Field string // backing struct field
	Type  Type
	Doc   string
}

// Param is a function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a generated function or method. Lines are emitted verbatim
// as the body; the formatter fixes indentation.
type Function struct {
	Name     string
	Receiver bool // method on the owning class; otherwise package level
	Params   []Param
	Results  []Type
	Doc      string
	Lines    []string
}

// Signature renders everything between "func " and the opening brace.
func (f Function) Signature(recv, class string) string {
	var b strings.Builder
	if f.Receiver {
		b.WriteString("(" + recv + " *" + class + ") ")
	}
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + " " + p.Type.String())
	}
	b.WriteByte(')')
	switch len(f.Results) {
	case 0:
	case 1:
		b.WriteString(" " + f.Results[0].String())
	default:
		parts := make([]string, len(f.Results))
		for i, r := range f.Results {
			parts[i] = r.String()
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	return b.String()
}

// Class is a generated struct type with its accessors and functions.
// Properties are the public read-only accessors; Internal is the backing
// storage declared in the struct.
type Class struct {
	Name       string
	Doc        string
	Receiver   string
	Properties []Property
	Internal   []Property
	Functions  []Function
}

// Function returns the named function, or nil.
func (c *Class) Function(name string) *Function {
	for i := range c.Functions {
		if c.Functions[i].Name == name {
			return &c.Functions[i]
		}
	}
	return nil
}

// Var is a package-level variable.
type Var struct {
	Name string
	Type Type
	Doc  string
}

// File is one generated unit, rendered as a declaration file holding the
// types and a definition file holding the functions.
type File struct {
	Name            string // file stem, e.g. "hero_data"
	Package         string
	Source          string // table file it was built from
	Imports         []string
	References      []string // files whose declarations this one uses
	Classes         []Class
	Vars            []Var
	StaticFunctions []Function

	// Root is the class whose constructor decodes this file's section
	// of the store.
	Root string
}

// AddImport records an import path once.
func (f *File) AddImport(path string) {
	for _, p := range f.Imports {
		if p == path {
			return
		}
	}
	f.Imports = append(f.Imports, path)
}

// Class returns the named class, or nil.
func (f *File) Class(name string) *Class {
	for i := range f.Classes {
		if f.Classes[i].Name == name {
			return &f.Classes[i]
		}
	}
	return nil
}

// DeclFileName is the name of the declaration file.
func (f *File) DeclFileName() string { return f.Name + ".gen.go" }

// ImplFileName is the name of the definition file.
func (f *File) ImplFileName() string { return f.Name + "_impl.gen.go" }

// TopLevel lists every package-level identifier the file declares.
func (f *File) TopLevel() []string {
	var names []string
	for _, c := range f.Classes {
		names = append(names, c.Name)
		for _, fn := range c.Functions {
			if !fn.Receiver {
				names = append(names, fn.Name)
			}
		}
	}
	for _, v := range f.Vars {
		names = append(names, v.Name)
	}
	for _, fn := range f.StaticFunctions {
		names = append(names, fn.Name)
	}
	return names
}
