package codegen

import (
	"fmt"

	"csvpack/internal/schema"
)

// BuildMatrix builds the accessor class for a matrix table.
func BuildMatrix(m *schema.MatrixTable, opts Options) (*File, error) {
	base, err := typeBase(m.Path, m.Name)
	if err != nil {
		return nil, err
	}

	f := &File{
		Name:    toSnakeCase(base) + fileSuffix,
		Package: opts.Package,
		Source:  m.Path,
	}
	f.AddImport(opts.RuntimeImport)
	f.AddImport("strconv")
	f.AddImport("strings")

	c := Class{
		Name:     base + dataSuffix,
		Doc:      fmt.Sprintf("%s%s holds the %s matrix, keyed by %s then %s.", base, dataSuffix, m.Name, m.RowParam, m.ColumnParam),
		Receiver: matrixRecv,
		Internal: []Property{{Field: "dictionary", Type: Named("map[string]map[string]string")}},
	}

	colParam := avoid(toCamelCase(m.ColumnParam), matrixRecv, "cell", "v", "strconv", "strings")
	rowParam := avoid(toCamelCase(m.RowParam), matrixRecv, "cell", "v", "strconv", "strings", colParam)
	result := matrixValueType(m.ValueType)
	accessor := toPascalCase(m.FunctionName) + "By" + toPascalCase(m.ColumnParam)

	getter := Function{
		Name:     accessor,
		Receiver: true,
		Params: []Param{
			{Name: colParam, Type: Named("string")},
			{Name: rowParam, Type: Named("string")},
		},
		Results: []Type{Named(result)},
		Doc: fmt.Sprintf("%s returns the %s cell for %s and %s as %s.",
			accessor, m.FunctionName, colParam, rowParam, result),
		Lines: append([]string{
			fmt.Sprintf("cell := %s.dictionary[%s][%s]", matrixRecv, rowParam, colParam),
		}, matrixCoercion(m.ValueType)...),
	}

	ctor := Function{
		Name:    "New" + c.Name,
		Params:  []Param{{Name: bufferParam, Type: PointerTo(readerType)}},
		Results: []Type{PointerTo(c.Name)},
		Doc:     fmt.Sprintf("New%s reads the column keys, the row keys and then the grid row by row.", c.Name),
		Lines: []string{
			fmt.Sprintf("%s := &%s{dictionary: make(map[string]map[string]string)}", matrixRecv, c.Name),
			fmt.Sprintf("columnKeys := %s.ReadSet()", bufferParam),
			fmt.Sprintf("rowKeys := %s.ReadSet()", bufferParam),
			"for _, rowKey := range rowKeys {",
			"row := make(map[string]string, len(columnKeys))",
			"for _, columnKey := range columnKeys {",
			fmt.Sprintf("row[columnKey] = %s.ReadString()", bufferParam),
			"}",
			fmt.Sprintf("%s.dictionary[rowKey] = row", matrixRecv),
			"}",
			"return " + matrixRecv,
		},
	}

	c.Functions = []Function{ctor, getter}
	f.Classes = []Class{c}
	f.Root = c.Name
	return f, nil
}
