package codegen

import (
	"fmt"

	"csvpack/internal/schema"
)

// Options control the shape of the generated package.
type Options struct {
	Package        string // Go package name of the generated files
	RuntimeImport  string // import path of pkg/bytebuffer
	L10nImport     string // import path of pkg/l10n
	Facade         string // facade type name
	SharedInstance bool   // also generate the process-wide facade accessors
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Package:       "gamedata",
		RuntimeImport: "csvpack/pkg/bytebuffer",
		L10nImport:    "csvpack/pkg/l10n",
		Facade:        "DataManager",
	}
}

// === Generated Names ===

const (
	bufferParam  = "buffer"
	dataSuffix   = "Data"
	dicSuffix    = "Dic"
	dataRecv     = "d"
	dicRecv      = "dic"
	matrixRecv   = "m"
	facadeRecv   = "dm"
	fileSuffix   = "_data"
	readerType   = "bytebuffer.Reader"
	generatedBy  = "csvpack"
	localizedFmt = "localized%s%s"
)

// === Field Types ===

// goTypes maps field types to the Go type of their accessor.
var goTypes = map[schema.FieldType]string{
	schema.Int32:     "int32",
	schema.Int64:     "int64",
	schema.Double:    "float64",
	schema.Bool:      "bool",
	schema.String:    "string",
	schema.StringSet: "[]string",
}

// readCalls maps field types to the Reader method that decodes them. The
// order of these calls in a constructor mirrors the encoder's write order.
var readCalls = map[schema.FieldType]string{
	schema.Int32:     "ReadInt",
	schema.Int64:     "ReadLong",
	schema.Double:    "ReadDouble",
	schema.Bool:      "ReadBool",
	schema.String:    "ReadString",
	schema.StringSet: "ReadSet",
}

// goType returns the accessor type for t.
func goType(t schema.FieldType) (string, error) {
	if name, ok := goTypes[t]; ok {
		return name, nil
	}
	return "", fmt.Errorf("no Go type for field type %s", t)
}

// matrixValueType returns the accessor result type for a matrix value
// type. Unresolved matrices hand back the raw cell.
func matrixValueType(t schema.FieldType) string {
	if name, ok := goTypes[t]; ok {
		return name
	}
	return "string"
}

// matrixCoercion returns the body lines that turn the string in "cell"
// into the accessor result.
func matrixCoercion(t schema.FieldType) []string {
	switch t {
	case schema.Int32:
		return []string{
			"v, _ := strconv.ParseInt(strings.TrimSpace(cell), 10, 32)",
			"return int32(v)",
		}
	case schema.Int64:
		return []string{
			"v, _ := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)",
			"return v",
		}
	case schema.Double:
		return []string{
			"v, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)",
			"return v",
		}
	case schema.Bool:
		return []string{
			"v, _ := strconv.ParseBool(strings.TrimSpace(cell))",
			"return v",
		}
	case schema.StringSet:
		return []string{
			`if cell == "" {`,
			"return []string{}",
			"}",
			fmt.Sprintf("return strings.Split(cell, %q)", schema.SetSeparator),
		}
	default:
		return []string{"return cell"}
	}
}
