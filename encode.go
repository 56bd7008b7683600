package csvdoc

import (
	"errors"
	"fmt"

	"github.com/KimNorgaard/go-csvdoc/internal/marshaler"
)

// Encode converts v into a Row laid out for columns.
//
// v may be a Row, a []string, a struct or pointer to one, or a map with
// string keys. Struct fields are named like RowsDecoded names them; an
// omitempty field holding its zero value is written as an empty field.
// Field values are written so that RowsDecoded reads them back: an
// encoding.TextMarshaler is used, and bool, string and numeric kinds are
// formatted by kind even if they implement fmt.Stringer, so a
// time.Duration becomes its nanosecond count.
// With columns, fields are placed by name and columns v does not mention
// stay empty; a field naming no column fails with ErrUnknownColumn.
// Without columns a struct yields its fields in declaration order.
func Encode(v any, columns []string) (Row, error) {
	switch x := v.(type) {
	case Row:
		return x.Clone(), nil
	case []string:
		return Row(x).Clone(), nil
	}
	fields, err := marshaler.Marshal(v, columns)
	if err != nil {
		var unknown *marshaler.UnknownFieldError
		if errors.As(err, &unknown) {
			return nil, &FieldError{Column: unknown.Name, Index: -1, Err: ErrUnknownColumn}
		}
		var merr *marshaler.MarshalerError
		if errors.As(err, &merr) {
			return nil, &MarshalerError{Type: merr.Type, Err: merr.Err}
		}
		return nil, fmt.Errorf("csvdoc: %w", err)
	}
	return Row(fields), nil
}

// InsertValue encodes v against the document's header and inserts it.
//
//	type Student struct {
//		Name string `csv:"Name"`
//		Age  int    `csv:"Age"`
//	}
//
//	err := doc.InsertValue(Student{Name: "Mike", Age: 15})
func (d *Document) InsertValue(v any) error {
	var columns []string
	if d.header != nil {
		columns = d.header
	}
	row, err := Encode(v, columns)
	if err != nil {
		return err
	}
	return d.Insert(row)
}
