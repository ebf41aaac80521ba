package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Output is one rendered source file.
type Output struct {
	Name    string
	Content []byte
}

// funcView is what the "func" template renders.
type funcView struct {
	Fn        Function
	Signature string
}

// Renderer turns source models into formatted Go files.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"generatedBy": func() string { return generatedBy },
		"quote":       strconv.Quote,
		"comment":     comment,
		"method": func(c Class, f Function) funcView {
			return funcView{Fn: f, Signature: f.Signature(c.Receiver, c.Name)}
		},
		"static": func(f Function) funcView {
			return funcView{Fn: f, Signature: f.Signature("", "")}
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render renders f into its declaration and definition files.
func (r *Renderer) Render(f *File) ([]Output, error) {
	jobs := []struct {
		tmplName string
		fileName string
	}{
		{"decl.go.tmpl", f.DeclFileName()},
		{"impl.go.tmpl", f.ImplFileName()},
	}

	out := make([]Output, 0, len(jobs))
	for _, job := range jobs {
		var buf bytes.Buffer
		if err := r.tmpl.ExecuteTemplate(&buf, job.tmplName, f); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", job.tmplName, err)
		}

		formatted, err := imports.Process(job.fileName, buf.Bytes(), nil)
		if err != nil {
			return nil, &FormatError{File: job.fileName, Source: buf.Bytes(), Err: err}
		}
		out = append(out, Output{Name: job.fileName, Content: formatted})
	}
	return out, nil
}

// FormatError carries the unformatted source of a file goimports rejected.
type FormatError struct {
	File   string
	Source []byte
	Err    error
}

func (e *FormatError) Error() string { return fmt.Sprintf("goimports %s: %v", e.File, e.Err) }

func (e *FormatError) Unwrap() error { return e.Err }

// comment renders doc as a // comment block followed by a newline.
func comment(doc string) string {
	if doc == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(doc, "\n") {
		b.WriteString("// " + line + "\n")
	}
	return b.String()
}
