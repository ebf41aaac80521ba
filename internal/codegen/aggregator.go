package codegen

import (
	"fmt"

	"csvpack/internal/domain"
)

// Aggregator assembles the facade that decodes every table of the store in
// the order the tables were registered. Registration order must match the
// order the encoders appended sections to the store.
type Aggregator struct {
	opts     Options
	file     File
	declared map[string]string // package-level identifier -> declaring source
	finished bool
}

// NewAggregator starts an empty facade.
func NewAggregator(opts Options) *Aggregator {
	a := &Aggregator{
		opts:     opts,
		declared: make(map[string]string),
	}
	name := opts.Facade
	a.file = File{
		Name:    toSnakeCase(name),
		Package: opts.Package,
		Imports: []string{"fmt", opts.RuntimeImport},
		Root:    name,
		Classes: []Class{{
			Name:     name,
			Doc:      fmt.Sprintf("%s holds every compiled table, decoded from one store.", name),
			Receiver: facadeRecv,
			Functions: []Function{{
				Name:    "New" + name,
				Params:  []Param{{Name: bufferParam, Type: PointerTo(readerType)}},
				Results: []Type{PointerTo(name), Named("error")},
				Doc:     fmt.Sprintf("New%s decodes every table from buffer, which must hold exactly one store.", name),
				Lines:   []string{fmt.Sprintf("%s := &%s{}", facadeRecv, name)},
			}},
		}},
	}
	return a
}

// Register adds one table's file to the facade: an internal field holding
// the root instance, a public accessor, and one constructor line.
func (a *Aggregator) Register(f *File) error {
	if a.finished {
		return fmt.Errorf("register %s: facade already finished", f.Name)
	}
	for _, name := range f.TopLevel() {
		if err := a.declare(name, f.Source); err != nil {
			return err
		}
	}

	root := f.Class(f.Root)
	if root == nil {
		return fmt.Errorf("register %s: root class %q not found", f.Name, f.Root)
	}

	facade := &a.file.Classes[0]
	field := toCamelCase(root.Name)
	facade.Internal = append(facade.Internal, Property{Field: field, Type: PointerTo(root.Name)})
	facade.Properties = append(facade.Properties, Property{
		Name:  "Get" + root.Name,
		Field: field,
		Type:  PointerTo(root.Name),
	})
	ctor := facade.Function("New" + facade.Name)
	ctor.Lines = append(ctor.Lines, fmt.Sprintf("%s.%s = New%s(%s)", facadeRecv, field, root.Name, bufferParam))

	a.file.References = append(a.file.References, f.Name)
	return nil
}

func (a *Aggregator) declare(name, source string) error {
	if prev, dup := a.declared[name]; dup {
		return domain.ErrSchema(source, "generated identifier %s is already declared by %s", name, prev)
	}
	a.declared[name] = source
	return nil
}

// File finishes the facade and returns it. Further registrations fail.
func (a *Aggregator) File() (*File, error) {
	if a.finished {
		return &a.file, nil
	}
	facade := &a.file.Classes[0]
	name := facade.Name
	for _, id := range []string{name, "New" + name, "Load" + name} {
		if err := a.declare(id, "facade"); err != nil {
			return nil, err
		}
	}

	ctor := facade.Function("New" + name)
	ctor.Lines = append(ctor.Lines,
		fmt.Sprintf("if err := %s.Err(); err != nil {", bufferParam),
		fmt.Sprintf("return nil, fmt.Errorf(\"decode %s: %%w\", err)", name),
		"}",
		fmt.Sprintf("if n := %s.Len(); n != 0 {", bufferParam),
		fmt.Sprintf("return nil, fmt.Errorf(\"decode %s: %%d trailing bytes\", n)", name),
		"}",
		"return "+facadeRecv+", nil",
	)
	facade.Functions = append(facade.Functions, Function{
		Name:    "Load" + name,
		Params:  []Param{{Name: "data", Type: Named("[]byte")}},
		Results: []Type{PointerTo(name), Named("error")},
		Doc:     fmt.Sprintf("Load%s decodes a store held in memory.", name),
		Lines:   []string{fmt.Sprintf("return New%s(bytebuffer.NewReader(data))", name)},
	})

	if a.opts.SharedInstance {
		if err := a.addSharedInstance(); err != nil {
			return nil, err
		}
	}
	a.finished = true
	return &a.file, nil
}

// addSharedInstance adds the process-wide get-or-create / get-or-fail pair.
func (a *Aggregator) addSharedInstance() error {
	facade := &a.file.Classes[0]
	name := facade.Name
	instance := "shared" + name
	mu := instance + "Mu"
	withData := name + "WithData"
	shared := "Shared" + name

	for _, id := range []string{instance, mu, withData, shared} {
		if err := a.declare(id, "facade"); err != nil {
			return err
		}
	}

	a.file.AddImport("errors")
	a.file.AddImport("sync")
	a.file.Vars = append(a.file.Vars,
		Var{Name: mu, Type: Named("sync.Mutex")},
		Var{Name: instance, Type: PointerTo(name)},
	)
	a.file.StaticFunctions = append(a.file.StaticFunctions,
		Function{
			Name:    withData,
			Params:  []Param{{Name: "data", Type: Named("[]byte")}},
			Results: []Type{PointerTo(name), Named("error")},
			Doc:     fmt.Sprintf("%s returns the shared %s, decoding data on first use. Later calls ignore data.", withData, name),
			Lines: []string{
				mu + ".Lock()",
				"defer " + mu + ".Unlock()",
				"if " + instance + " != nil {",
				"return " + instance + ", nil",
				"}",
				fmt.Sprintf("%s, err := Load%s(data)", facadeRecv, name),
				"if err != nil {",
				"return nil, err",
				"}",
				instance + " = " + facadeRecv,
				"return " + facadeRecv + ", nil",
			},
		},
		Function{
			Name:    shared,
			Results: []Type{PointerTo(name), Named("error")},
			Doc:     fmt.Sprintf("%s returns the shared %s created by %s.", shared, name, withData),
			Lines: []string{
				mu + ".Lock()",
				"defer " + mu + ".Unlock()",
				"if " + instance + " == nil {",
				fmt.Sprintf("return nil, errors.New(%q)", a.opts.Package+": "+name+" has not been loaded"),
				"}",
				"return " + instance + ", nil",
			},
		},
	)
	return nil
}
