package codegen

import (
	"fmt"
	"strconv"

	"csvpack/internal/domain"
	"csvpack/internal/schema"
)

// typeBase returns the exported stem used for a table's generated types.
func typeBase(path, table string) (string, error) {
	base := toPascalCase(table)
	if !schema.IsIdentifier(base) {
		return "", domain.ErrSchema(path, "table name %q does not form a Go identifier", table)
	}
	return base, nil
}

// BuildRowTable builds the data class, the lookup class and the localized
// helpers for a row table.
func BuildRowTable(s *schema.TableSchema, opts Options) (*File, error) {
	base, err := typeBase(s.Path, s.Name)
	if err != nil {
		return nil, err
	}

	f := &File{
		Name:    toSnakeCase(base) + fileSuffix,
		Package: opts.Package,
		Source:  s.Path,
	}
	f.AddImport(opts.RuntimeImport)

	data, err := buildDataClass(f, s, base, opts)
	if err != nil {
		return nil, err
	}
	dic := buildDicClass(s, base, data)
	f.Classes = append(f.Classes, *data, dic)
	f.Root = dic.Name
	return f, nil
}

func buildDataClass(f *File, s *schema.TableSchema, base string, opts Options) (*Class, error) {
	c := &Class{
		Name:     base + dataSuffix,
		Doc:      fmt.Sprintf("%s%s is one record of the %s table.", base, dataSuffix, s.Name),
		Receiver: dataRecv,
	}

	ctor := Function{
		Name:    "New" + c.Name,
		Params:  []Param{{Name: bufferParam, Type: PointerTo(readerType)}},
		Results: []Type{PointerTo(c.Name)},
		Doc:     fmt.Sprintf("New%s reads one record from buffer.", c.Name),
		Lines:   []string{fmt.Sprintf("%s := &%s{}", dataRecv, c.Name)},
	}

	methods := make(map[string]string)
	claim := func(method, column string) error {
		if prev, dup := methods[method]; dup {
			return domain.ErrSchema(s.Path, "columns %q and %q both generate method %s", prev, column, method)
		}
		methods[method] = column
		return nil
	}

	key := s.Key()
	for _, field := range s.Resolved() {
		typ, err := goType(field.Type)
		if err != nil {
			return nil, domain.ErrSchema(s.Path, "column %q: %v", field.Name, err)
		}
		accessor := toPascalCase(field.Name)
		if accessor == "" {
			return nil, domain.ErrSchema(s.Path, "column %q does not form a Go identifier", field.Name)
		}
		if err := claim(accessor, field.Name); err != nil {
			return nil, err
		}
		backing := toCamelCase(field.Name)

		c.Internal = append(c.Internal, Property{Field: backing, Type: Named(typ)})
		c.Properties = append(c.Properties, Property{
			Name:  accessor,
			Field: backing,
			Type:  Named(typ),
		})
		ctor.Lines = append(ctor.Lines, fmt.Sprintf("%s.%s = %s.%s()", dataRecv, backing, bufferParam, readCalls[field.Type]))
	}
	ctor.Lines = append(ctor.Lines, "return "+dataRecv)
	c.Functions = append(c.Functions, ctor)

	keyField := toCamelCase(key.Name)
	for _, field := range s.Localized() {
		loc := field.Localized
		if loc.Accessor == "" {
			continue
		}
		accessor := toPascalCase(loc.Accessor)
		if err := claim(accessor, field.Name); err != nil {
			return nil, err
		}
		helper := fmt.Sprintf(localizedFmt, base, accessor)
		c.Functions = append(c.Functions, Function{
			Name:     accessor,
			Receiver: true,
			Results:  []Type{Named("string")},
			Doc:      fmt.Sprintf("%s returns the localized %s of the record.", accessor, loc.Accessor),
			Lines:    []string{fmt.Sprintf("return %s(%s.%s)", helper, dataRecv, keyField)},
		})
		f.StaticFunctions = append(f.StaticFunctions, localizedHelper(helper, loc))
		f.AddImport(opts.L10nImport)
	}
	return c, nil
}

// localizedHelper builds the file-scope lookup behind a localized accessor.
func localizedHelper(name string, loc *schema.LocalizedField) Function {
	lookup := "key"
	if loc.Prefix != "" {
		lookup = strconv.Quote(loc.Prefix+"_") + " + key"
	}
	return Function{
		Name:    name,
		Params:  []Param{{Name: "key", Type: Named("string")}},
		Results: []Type{Named("string")},
		Lines:   []string{fmt.Sprintf("return l10n.String(%s)", lookup)},
	}
}

func buildDicClass(s *schema.TableSchema, base string, data *Class) Class {
	key := s.Key()
	keyField := toCamelCase(key.Name)
	keyParam := avoid(keyField, dicRecv, bufferParam)
	keyName := toPascalCase(key.Name)

	c := Class{Name: base + dicSuffix, Receiver: dicRecv}
	ctor := Function{
		Name:    "New" + c.Name,
		Params:  []Param{{Name: bufferParam, Type: PointerTo(readerType)}},
		Results: []Type{PointerTo(c.Name)},
		Doc:     fmt.Sprintf("New%s reads the row count and then every %s record.", c.Name, data.Name),
	}

	if s.Role() == schema.GroupKey {
		mapType := Named("map[string][]*" + data.Name)
		c.Doc = fmt.Sprintf("%s groups %s records by %s, in row order.", c.Name, data.Name, key.Name)
		c.Internal = []Property{{Field: "groupData", Type: mapType}}
		ctor.Lines = []string{
			fmt.Sprintf("%s := &%s{groupData: make(%s)}", dicRecv, c.Name, mapType),
			fmt.Sprintf("amount := int(%s.ReadInt())", bufferParam),
			fmt.Sprintf("for i := 0; i < amount && %s.Err() == nil; i++ {", bufferParam),
			fmt.Sprintf("item := New%s(%s)", data.Name, bufferParam),
			fmt.Sprintf("%s.groupData[item.%s] = append(%s.groupData[item.%s], item)", dicRecv, keyField, dicRecv, keyField),
			"}",
			"return " + dicRecv,
		}
		c.Functions = []Function{ctor, {
			Name:     fmt.Sprintf("Get%sGroupBy%s", base, keyName),
			Receiver: true,
			Params:   []Param{{Name: keyParam, Type: Named("string")}},
			Results:  []Type{Named("[]*" + data.Name)},
			Doc:      fmt.Sprintf("Get%sGroupBy%s returns the records sharing %s, or nil.", base, keyName, keyParam),
			Lines:    []string{fmt.Sprintf("return %s.groupData[%s]", dicRecv, keyParam)},
		}}
		return c
	}

	mapType := Named("map[string]*" + data.Name)
	c.Doc = fmt.Sprintf("%s indexes %s records by %s.", c.Name, data.Name, key.Name)
	c.Internal = []Property{{Field: "data", Type: mapType}}
	ctor.Lines = []string{
		fmt.Sprintf("%s := &%s{data: make(%s)}", dicRecv, c.Name, mapType),
		fmt.Sprintf("amount := int(%s.ReadInt())", bufferParam),
		fmt.Sprintf("for i := 0; i < amount && %s.Err() == nil; i++ {", bufferParam),
		fmt.Sprintf("item := New%s(%s)", data.Name, bufferParam),
		fmt.Sprintf("%s.data[item.%s] = item", dicRecv, keyField),
		"}",
		"return " + dicRecv,
	}
	c.Functions = []Function{ctor,
		{
			Name:     fmt.Sprintf("Get%sBy%s", base, keyName),
			Receiver: true,
			Params:   []Param{{Name: keyParam, Type: Named("string")}},
			Results:  []Type{PointerTo(data.Name)},
			Doc:      fmt.Sprintf("Get%sBy%s returns the record with the given %s, or nil.", base, keyName, keyParam),
			Lines:    []string{fmt.Sprintf("return %s.data[%s]", dicRecv, keyParam)},
		},
		{
			Name:     "GetDictionary",
			Receiver: true,
			Results:  []Type{mapType},
			Doc:      "GetDictionary returns every record keyed by " + key.Name + ".",
			Lines:    []string{fmt.Sprintf("return %s.data", dicRecv)},
		},
	}
	return c
}
