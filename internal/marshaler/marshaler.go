package marshaler

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"github.com/KimNorgaard/go-csvdoc/internal/mapper"
)

// UnknownFieldError reports a struct field or map key that no column of
// the target header names.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("no column named %q", e.Name)
}

// UnsupportedTypeError reports a value that cannot become a row.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "cannot marshal nil into a row"
	}
	return "cannot marshal " + e.Type.String() + " into a row"
}

// MarshalerError wraps the failure of a MarshalText method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "error calling MarshalText for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// Format renders a single value as field text.
func Format(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return "", &MarshalerError{Type: reflect.TypeOf(v), Err: err}
		}
		return string(b), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return formatValue(reflect.ValueOf(v))
}

func formatValue(v reflect.Value) (string, error) {
	if !v.IsValid() {
		return "", nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return "", nil
	}
	if v.Kind() != reflect.Pointer && v.CanAddr() && v.Addr().Type().Implements(textMarshalerType) {
		return Format(v.Addr().Interface())
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case encoding.TextMarshaler, fmt.Stringer:
			return Format(x)
		}
	}

	if s, ok := formatKind(v); ok {
		return s, nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return formatValue(v.Elem())
	}
	if v.CanInterface() {
		return fmt.Sprint(v.Interface()), nil
	}
	return "", &UnsupportedTypeError{Type: v.Type()}
}

// formatKind formats bool, string and numeric kinds.
func formatKind(v reflect.Value) (string, bool) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), true
	}
	return "", false
}

// formatField renders a struct field or map value in the form decoding
// reads back: a TextMarshaler is used as is, while bool, string and
// numeric kinds are formatted by kind even when they implement
// fmt.Stringer. time.Duration is written as nanoseconds, not "1s".
func formatField(v reflect.Value) (string, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", nil
		}
		if v.Kind() == reflect.Pointer && v.Type().Implements(textMarshalerType) {
			return Format(v.Interface())
		}
		v = v.Elem()
	}
	if v.CanAddr() && v.Addr().Type().Implements(textMarshalerType) {
		return Format(v.Addr().Interface())
	}
	if v.CanInterface() {
		if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
			return Format(tm)
		}
	}
	if s, ok := formatKind(v); ok {
		return s, nil
	}
	return formatValue(v)
}

// isEmptyValue reports whether the value v is empty.
// It is equivalent to the `encoding/json` definition of empty:
// false, 0, a nil pointer, a nil interface value, and any empty array,
// slice, map, or string.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// Marshal converts a struct, a pointer to one, or a map with string keys
// into row fields.
//
// With columns set, the result has one field per column in that order;
// columns v does not mention are left empty and a field or key that no
// column names is an *UnknownFieldError. Without columns a struct yields
// its fields in declaration order; maps need columns.
func Marshal(v any, columns []string) ([]string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, &UnsupportedTypeError{Type: rv.Type()}
		}
		rv = rv.Elem()
	}

	var pos map[string]int
	if columns != nil {
		pos = make(map[string]int, len(columns))
		for i, name := range columns {
			pos[name] = i
		}
	}

	switch rv.Kind() {
	case reflect.Struct:
		return marshalStruct(rv, columns, pos)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || columns == nil {
			return nil, &UnsupportedTypeError{Type: rv.Type()}
		}
		return marshalMap(rv, columns, pos)
	case reflect.Invalid:
		return nil, &UnsupportedTypeError{}
	default:
		return nil, &UnsupportedTypeError{Type: rv.Type()}
	}
}

func marshalStruct(v reflect.Value, columns []string, pos map[string]int) ([]string, error) {
	fields := mapper.Fields(v.Type())
	var out []string
	if columns == nil {
		out = make([]string, len(fields))
	} else {
		out = make([]string, len(columns))
	}
	for i, f := range fields {
		at := i
		if columns != nil {
			var ok bool
			if at, ok = pos[f.Name]; !ok {
				return nil, &UnknownFieldError{Name: f.Name}
			}
		}
		fv := v.FieldByIndex(f.Index)
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		s, err := formatField(fv)
		if err != nil {
			return nil, err
		}
		out[at] = s
	}
	return out, nil
}

func marshalMap(v reflect.Value, columns []string, pos map[string]int) ([]string, error) {
	out := make([]string, len(columns))
	iter := v.MapRange()
	for iter.Next() {
		name := iter.Key().String()
		at, ok := pos[name]
		if !ok {
			return nil, &UnknownFieldError{Name: name}
		}
		s, err := formatField(iter.Value())
		if err != nil {
			return nil, err
		}
		out[at] = s
	}
	return out, nil
}
