package csvdoc

import (
	"slices"

	"github.com/KimNorgaard/go-csvdoc/internal/formatter"
)

// Row is one record: an ordered list of text fields. A Row knows nothing
// about column names; name-based access goes through a Document entry.
//
// Rows returned by a Reader are freshly allocated and owned by the caller.
type Row []string

// NewRow builds a row from literal values, converting each to text:
// strings and byte slices as is, numbers and booleans with strconv (floats
// in their shortest form), encoding.TextMarshaler and fmt.Stringer through
// their methods, and nil as the empty string.
//
//	row := csvdoc.NewRow("Intr,o", 34, 1.5, true)
func NewRow(values ...any) Row {
	r := make(Row, len(values))
	for i, v := range values {
		r[i] = text(v)
	}
	return r
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r)
}

// Field returns the text of field i.
func (r Row) Field(i int) (string, error) {
	if i < 0 || i >= len(r) {
		return "", &FieldError{Index: i, Err: ErrIndexOutOfRange}
	}
	return r[i], nil
}

// Set replaces field i with the text form of v.
func (r Row) Set(i int, v any) error {
	if i < 0 || i >= len(r) {
		return &FieldError{Index: i, Err: ErrIndexOutOfRange}
	}
	s, err := formatValue(v)
	if err != nil {
		return &FieldError{Index: i, Err: ErrTypeConversion, Type: "text", Cause: err}
	}
	r[i] = s
	return nil
}

// Append returns r with the text form of values added at the end.
func (r Row) Append(values ...any) Row {
	return append(r, NewRow(values...)...)
}

// Remove returns r without field i.
func (r Row) Remove(i int) (Row, error) {
	if i < 0 || i >= len(r) {
		return r, &FieldError{Index: i, Err: ErrIndexOutOfRange}
	}
	return slices.Delete(r, i, i+1), nil
}

// Clone returns a copy of r that shares no storage with it.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return slices.Clone(r)
}

// Equal reports whether r and other hold the same fields in the same order.
func (r Row) Equal(other Row) bool {
	return slices.Equal(r, other)
}

// Text renders the row as one line of delimited text, without a line
// terminator. Fields containing delim, a double quote, CR or LF are quoted
// and embedded quotes are doubled.
func (r Row) Text(delim rune) string {
	return formatter.Format(r, delim)
}

// String renders the row comma-separated.
func (r Row) String() string {
	return r.Text(defaultDelimiter)
}

// Field parses field i of r as a T.
//
//	age, err := csvdoc.Field[int](row, 1)
func Field[T Value](r Row, i int) (T, error) {
	var zero T
	s, err := r.Field(i)
	if err != nil {
		return zero, err
	}
	v, err := parseValue[T](s)
	if err != nil {
		return zero, &FieldError{Index: i, Type: typeName[T](), Value: s, Err: ErrTypeConversion, Cause: err}
	}
	return v, nil
}
