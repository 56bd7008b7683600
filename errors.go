package csvdoc

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrIO reports a failure of the underlying source or sink.
	ErrIO = errors.New("csvdoc: i/o error")
	// ErrMalformedRow reports a quoting violation in the input.
	ErrMalformedRow = errors.New("csvdoc: malformed row")
	// ErrRowWidthMismatch reports a row whose field count differs from the header.
	ErrRowWidthMismatch = errors.New("csvdoc: row width does not match header")
	// ErrDuplicateHeaderName reports a header naming the same column twice.
	ErrDuplicateHeaderName = errors.New("csvdoc: duplicate header name")
	// ErrUnknownColumn reports a lookup of a column the header does not name.
	ErrUnknownColumn = errors.New("csvdoc: unknown column")
	// ErrIndexOutOfRange reports a positional lookup beyond the field count.
	ErrIndexOutOfRange = errors.New("csvdoc: index out of range")
	// ErrTypeConversion reports field text that does not parse as the requested type.
	ErrTypeConversion = errors.New("csvdoc: type conversion failed")
	// ErrConfiguration reports an invalid or incomplete Reader or Writer setup.
	ErrConfiguration = errors.New("csvdoc: invalid configuration")
	// ErrNoHeader is returned by Reader.Headers when there is no header row.
	ErrNoHeader = errors.New("csvdoc: no header row")
	// ErrDocumentBusy reports a structural change attempted while row views are live.
	ErrDocumentBusy = errors.New("csvdoc: document has live row views")
	// ErrViewExpired reports use of a mutable row view after its iteration step ended.
	ErrViewExpired = errors.New("csvdoc: row view used after it expired")
)

// A ParseError describes a malformed row. Row is the 1-based record number
// in the input (a header counts as record 1) and Offset the zero-based byte
// offset of the offending character.
type ParseError struct {
	Row    int
	Line   int
	Column int
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csvdoc: malformed row %d at line %d, column %d (offset %d): %s",
		e.Row, e.Line, e.Column, e.Offset, e.Msg)
}

// Is makes errors.Is(err, ErrMalformedRow) true for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrMalformedRow }

// An IOError wraps a failure of the source or sink.
type IOError struct {
	Op  string // "read", "write", "flush", "open" or "create"
	Err error
}

func (e *IOError) Error() string {
	return "csvdoc: " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// A WidthError reports a row whose width disagrees with the header. Row is
// the 1-based data row number, header excluded.
type WidthError struct {
	Row  int
	Want int
	Got  int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("csvdoc: row %d has %d fields, header has %d", e.Row, e.Got, e.Want)
}

func (e *WidthError) Is(target error) bool { return target == ErrRowWidthMismatch }

// A DuplicateHeaderError names a column that appears twice in a header.
type DuplicateHeaderError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("csvdoc: duplicate header name %q at columns %d and %d", e.Name, e.First, e.Second)
}

func (e *DuplicateHeaderError) Is(target error) bool { return target == ErrDuplicateHeaderName }

// A FieldError describes a failed field access. Err is one of
// ErrUnknownColumn, ErrIndexOutOfRange or ErrTypeConversion.
type FieldError struct {
	Row    int    // 1-based data row number, 0 when not known
	Column string // column name, empty for positional access
	Index  int    // column index, -1 when the name is unknown
	Type   string // requested type for conversions
	Value  string // offending field text for conversions
	Err    error
	Cause  error // underlying strconv or TextUnmarshaler error
}

func (e *FieldError) Error() string {
	var where string
	switch {
	case e.Column != "" && e.Row > 0:
		where = fmt.Sprintf("row %d, column %q", e.Row, e.Column)
	case e.Column != "":
		where = fmt.Sprintf("column %q", e.Column)
	case e.Row > 0:
		where = fmt.Sprintf("row %d, field %d", e.Row, e.Index)
	default:
		where = fmt.Sprintf("field %d", e.Index)
	}
	msg := e.Err.Error() + ": " + where
	if e.Err == ErrTypeConversion {
		msg += fmt.Sprintf(": cannot parse %q as %s", e.Value, e.Type)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// An UnmarshalerError represents an error from calling an UnmarshalCSV or
// UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "csvdoc: error calling unmarshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }

// A MarshalerError represents an error from calling a MarshalText method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "csvdoc: error calling MarshalText for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// A RowError attaches a 1-based data row number to an error raised while
// processing that row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("csvdoc: row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...)
}
