package csvdoc

import (
	"io"
	"iter"

	"github.com/KimNorgaard/go-csvdoc/internal/formatter"
)

// Writer serializes rows as delimited text.
//
// Output is buffered; call Flush, or use WriteAll or WriteSeq, to make sure
// it reaches the sink. The first sink failure is returned by every later
// call.
type Writer struct {
	f     *formatter.Formatter
	delim rune
	err   error
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	if w == nil {
		return nil, configError("writer has no sink")
	}
	o := defaultOptions()
	if err := o.apply(opts); err != nil {
		return nil, err
	}
	f := formatter.New(w, o.delim)
	f.CRLF = o.crlf
	f.AlwaysQuote = o.alwaysQuote
	return &Writer{f: f, delim: o.delim}, nil
}

// Delimiter returns the field delimiter in use.
func (w *Writer) Delimiter() rune {
	return w.delim
}

// Write writes one row followed by the record terminator. An empty row is
// written as an empty quoted field so that it reads back as one row; that
// row has one empty field, so zero-width rows do not round-trip.
func (w *Writer) Write(row Row) error {
	if w.err != nil {
		return w.err
	}
	if len(row) == 0 {
		row = Row{""}
	}
	if err := w.f.WriteRecord(row); err != nil {
		w.err = &IOError{Op: "write", Err: err}
	}
	return w.err
}

// WriteAll writes rows and flushes. It stops at the first failure; rows
// written before it stay written.
func (w *Writer) WriteAll(rows []Row) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteSeq is WriteAll for a row sequence.
func (w *Writer) WriteSeq(rows iter.Seq[Row]) error {
	for row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the sink.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.f.Flush(); err != nil {
		w.err = &IOError{Op: "flush", Err: err}
	}
	return w.err
}

// Error reports the failure that stopped the Writer, if any.
func (w *Writer) Error() error {
	return w.err
}
