package csvdoc

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/KimNorgaard/go-csvdoc/internal/marshaler"
)

// Value is the set of types a field can be parsed into on access. A
// conversion succeeds only if the whole field text is consumed, so " 42" is
// not an int and "1.5" is not an int either.
type Value interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

var errUnsupportedKind = errors.New("unsupported kind")

func parseValue[T Value](s string) (T, error) {
	var v T
	err := parseInto(reflect.ValueOf(&v).Elem(), s)
	return v, err
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// parseInto stores the text s into rv using the strconv parser matching rv's
// kind. Bit sizes follow the target type, so out-of-range numbers fail.
func parseInto(rv reflect.Value, s string) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)
	default:
		return errUnsupportedKind
	}
	return nil
}

// formatValue renders a Go value as field text.
func formatValue(v any) (string, error) {
	return marshaler.Format(v)
}

// text is formatValue for callers that cannot report an error; a failing
// TextMarshaler falls back to fmt.Sprint.
func text(v any) string {
	s, err := formatValue(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
