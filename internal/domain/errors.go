// Package domain defines the error taxonomy shared by every compiler stage.
//
// All four kinds are fatal to a compile run: the binary store and the
// generated sources are positionally coupled across tables, so no stage
// recovers locally or skips rows.
package domain

import "fmt"

// SchemaError indicates a header or row that does not match the declared
// table shape (key fields, column counts, unparseable cells).
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string { return withPath(e.Path, e.Message) }

// ConstraintError indicates a uniqueness violation such as a duplicate key
// or a duplicate matrix axis key.
type ConstraintError struct {
	Path    string
	Message string
}

func (e *ConstraintError) Error() string { return withPath(e.Path, e.Message) }

// IOError indicates a source that could not be read or an output that could
// not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return withPath(e.Path, e.Err.Error())
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError indicates a malformed line in a localization override file.
type FormatError struct {
	Path    string
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return withPath(fmt.Sprintf("%s:%d", e.Path, e.Line), e.Message)
	}
	return withPath(e.Path, e.Message)
}

// ErrSchema creates a SchemaError with a formatted message.
func ErrSchema(path, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// ErrConstraint creates a ConstraintError with a formatted message.
func ErrConstraint(path, format string, args ...interface{}) *ConstraintError {
	return &ConstraintError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// ErrIO wraps err as an IOError for path. A nil err yields nil.
func ErrIO(path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Path: path, Err: err}
}

// ErrFormat creates a FormatError for a specific line of path.
func ErrFormat(path string, line int, format string, args ...interface{}) *FormatError {
	return &FormatError{Path: path, Line: line, Message: fmt.Sprintf(format, args...)}
}

func withPath(path, msg string) string {
	if path == "" {
		return msg
	}
	return path + ": " + msg
}
