package mapper

import (
	"reflect"
	"strings"
	"sync"
)

// Field describes one struct field bound to a column.
type Field struct {
	// Name is the column name: the csv tag name, or the Go field name.
	Name string
	// Index is the field's index sequence for reflect.Value.FieldByIndex.
	Index []int
	// Tagged reports whether Name came from a tag.
	Tagged bool
	// OmitEmpty is set by the omitempty tag option.
	OmitEmpty bool
}

// fieldCache caches the field list of each struct type.
var fieldCache sync.Map // map[reflect.Type][]Field

// Fields returns the column-bound fields of struct type t in declaration
// order, followed by the promoted fields of untagged embedded structs.
// Unexported fields and fields tagged csv:"-" are skipped. When two fields
// share a name the outer one wins.
func Fields(t reflect.Type) []Field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]Field)
	}

	var fields []Field
	seen := make(map[string]bool)
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		var embedded []reflect.StructField
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get("csv")
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == "" {
				embedded = append(embedded, sf)
				continue
			}
			if !sf.IsExported() || tag == "-" {
				continue
			}

			f := Field{Index: append(append([]int(nil), idx...), i)}
			name, opts, _ := strings.Cut(tag, ",")
			if name != "" {
				f.Name = name
				f.Tagged = true
			} else {
				f.Name = sf.Name
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				if strings.TrimSpace(opt) == "omitempty" {
					f.OmitEmpty = true
				}
			}
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			fields = append(fields, f)
		}
		// Embedded fields go after the outer ones so outer names win.
		for _, sf := range embedded {
			walk(sf.Type, append(append([]int(nil), idx...), sf.Index...))
		}
	}
	walk(t, nil)

	fieldCache.Store(t, fields)
	return fields
}
