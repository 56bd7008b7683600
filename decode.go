package csvdoc

import (
	"encoding"
	"errors"
	"iter"
	"reflect"

	"github.com/KimNorgaard/go-csvdoc/internal/mapper"
)

// EntryUnmarshaler is the interface implemented by types that can build
// themselves from a document row.
//
//	type Student struct {
//		Name string
//		Age  int
//	}
//
//	func (s *Student) UnmarshalEntry(e csvdoc.DocEntry) (err error) {
//		if s.Name, err = e.Raw("Name"); err != nil {
//			return err
//		}
//		s.Age, err = csvdoc.Lookup[int](e, "Age")
//		return err
//	}
type EntryUnmarshaler interface {
	UnmarshalEntry(DocEntry) error
}

var (
	entryUnmarshalerType = reflect.TypeFor[EntryUnmarshaler]()
	textUnmarshalerType  = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// RowsDecoded returns a sequence that decodes every row into a T. A row
// that fails to decode yields its error and the sequence moves on.
//
// If *T implements EntryUnmarshaler its UnmarshalEntry method is used.
// Otherwise T must be a struct, or a pointer to one, and its exported
// fields are filled from the columns they name: the csv tag name, or the
// field name when untagged. Fields tagged csv:"-" are skipped. Field types
// may be anything a Value may be, a pointer to one, or implement
// encoding.TextUnmarshaler. An empty field leaves an omitempty field at its
// zero value instead of failing. Every remaining field must name a column.
func RowsDecoded[T any](d *Document) iter.Seq2[T, error] {
	return RowsDecodedFunc(d, decodeEntry[T])
}

// RowsDecodedFunc is RowsDecoded with an explicit decode function.
func RowsDecodedFunc[T any](d *Document, decode func(DocEntry) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for e := range d.Rows() {
			v, err := decode(e)
			if err != nil {
				err = withRow(err, e.Number())
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

// Decode fills v, which must be a non-nil pointer, from e the way
// RowsDecoded does.
func Decode(e DocEntry, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return configError("Decode(non-pointer %T or nil)", v)
	}
	return decodeValue(e, rv.Elem())
}

func decodeEntry[T any](e DocEntry) (T, error) {
	var v T
	err := decodeValue(e, reflect.ValueOf(&v).Elem())
	return v, err
}

func decodeValue(e DocEntry, rv reflect.Value) error {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(entryUnmarshalerType) {
		u := rv.Addr().Interface().(EntryUnmarshaler)
		if err := u.UnmarshalEntry(e); err != nil {
			return &UnmarshalerError{Type: rv.Addr().Type(), Err: err}
		}
		return nil
	}
	if rv.Kind() != reflect.Struct {
		return configError("cannot decode a row into %s", rv.Type())
	}
	return decodeStruct(e, rv)
}

func decodeStruct(e DocEntry, rv reflect.Value) error {
	for _, f := range mapper.Fields(rv.Type()) {
		s, err := e.Raw(f.Name)
		if err != nil {
			return err
		}
		if s == "" && f.OmitEmpty {
			continue
		}
		if err := decodeField(rv.FieldByIndex(f.Index), s); err != nil {
			i, _ := e.ColumnIndex(f.Name)
			var uerr *UnmarshalerError
			if errors.As(err, &uerr) {
				return err
			}
			return &FieldError{
				Row:    e.Number(),
				Column: f.Name,
				Index:  i,
				Type:   rv.FieldByIndex(f.Index).Type().String(),
				Value:  s,
				Err:    ErrTypeConversion,
				Cause:  err,
			}
		}
	}
	return nil
}

// decodeField stores s into fv, allocating pointers as needed. A
// TextUnmarshaler wins over the kind-based conversion.
func decodeField(fv reflect.Value, s string) error {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	if fv.CanAddr() && fv.Addr().Type().Implements(textUnmarshalerType) {
		u := fv.Addr().Interface().(encoding.TextUnmarshaler)
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return &UnmarshalerError{Type: fv.Addr().Type(), Err: err}
		}
		return nil
	}
	return parseInto(fv, s)
}

// withRow attaches a row number to err unless it already carries one.
func withRow(err error, row int) error {
	var ferr *FieldError
	if errors.As(err, &ferr) && ferr.Row > 0 {
		return err
	}
	return &RowError{Row: row, Err: err}
}
