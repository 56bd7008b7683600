package formatter

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	defaultBufferSize = 4096
	quote             = '"'
)

// Formatter writes records as delimited text to an output stream.
type Formatter struct {
	w     *bufio.Writer
	delim rune
	// CRLF terminates records with "\r\n" instead of "\n".
	CRLF bool
	// AlwaysQuote quotes every field, whether it needs it or not.
	AlwaysQuote bool

	scratch []byte
}

// New returns a new formatter that writes to w.
func New(w io.Writer, delim rune) *Formatter {
	return &Formatter{
		w:     bufio.NewWriterSize(w, defaultBufferSize),
		delim: delim,
		CRLF:  true,
	}
}

// WriteRecord writes one record followed by the record terminator. The
// output is buffered; call Flush to push it to the underlying writer.
func (f *Formatter) WriteRecord(fields []string) error {
	f.scratch = appendRecord(f.scratch[:0], fields, f.delim, f.AlwaysQuote)
	if f.CRLF {
		f.scratch = append(f.scratch, '\r', '\n')
	} else {
		f.scratch = append(f.scratch, '\n')
	}
	_, err := f.w.Write(f.scratch)
	return err
}

// Flush writes any buffered data to the underlying writer.
func (f *Formatter) Flush() error {
	return f.w.Flush()
}

// Format renders fields as a single line of text without a terminator.
func Format(fields []string, delim rune) string {
	return string(appendRecord(nil, fields, delim, false))
}

// NeedsQuote reports whether field must be quoted to survive a round trip.
func NeedsQuote(field string, delim rune) bool {
	return strings.ContainsRune(field, delim) || strings.ContainsAny(field, "\"\r\n")
}

func appendRecord(dst []byte, fields []string, delim rune, force bool) []byte {
	// A lone empty field would otherwise render as a blank line, which
	// readers skip. Writer sends zero-width rows here too, so those read
	// back as one empty field.
	if len(fields) == 1 && fields[0] == "" {
		return append(dst, quote, quote)
	}
	for i, field := range fields {
		if i > 0 {
			dst = utf8.AppendRune(dst, delim)
		}
		dst = appendField(dst, field, force || NeedsQuote(field, delim))
	}
	return dst
}

func appendField(dst []byte, field string, quoted bool) []byte {
	if !quoted {
		return append(dst, field...)
	}
	dst = append(dst, quote)
	for {
		i := strings.IndexByte(field, quote)
		if i < 0 {
			break
		}
		dst = append(dst, field[:i+1]...)
		dst = append(dst, quote)
		field = field[i+1:]
	}
	dst = append(dst, field...)
	return append(dst, quote)
}
