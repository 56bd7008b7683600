package csvdoc

import (
	"errors"
	"io"
	"iter"
	"unicode/utf8"

	"github.com/KimNorgaard/go-csvdoc/internal/lexer"
	"github.com/KimNorgaard/go-csvdoc/internal/parser"
)

const defaultDelimiter = ','

// ReaderConfig is the complete set of Reader settings.
type ReaderConfig struct {
	// Delimiter separates fields. The zero value means ','. It must not be a
	// double quote, CR, LF or an invalid rune.
	Delimiter rune
	// HasHeader makes the first record the header row.
	HasHeader bool
	// Source is the byte stream to parse. It is required.
	Source io.Reader
}

// DefaultReaderConfig returns a comma-delimited configuration with a header
// row and no source.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{Delimiter: defaultDelimiter, HasHeader: true}
}

func validDelimiter(r rune) error {
	switch {
	case r == '"':
		return configError("delimiter cannot be a double quote")
	case r == '\r' || r == '\n':
		return configError("delimiter cannot be a line terminator")
	case r == utf8.RuneError || !utf8.ValidRune(r):
		return configError("invalid delimiter %U", r)
	}
	return nil
}

func (c ReaderConfig) normalize() (ReaderConfig, error) {
	if c.Source == nil {
		return c, configError("reader has no source")
	}
	if c.Delimiter == 0 {
		c.Delimiter = defaultDelimiter
	}
	if err := validDelimiter(c.Delimiter); err != nil {
		return c, err
	}
	return c, nil
}

// Reader reads rows from delimited text one at a time.
//
// A Reader owns its source until the input is exhausted or an error stops
// it. After the first error every call returns that same error.
type Reader struct {
	cfg    ReaderConfig
	p      *parser.Parser
	header Row
	rows   int
}

// NewReader validates cfg and returns a Reader over cfg.Source. When
// cfg.HasHeader is set the header row is read immediately, so a malformed
// header fails here.
func NewReader(cfg ReaderConfig) (*Reader, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	r := &Reader{
		cfg: cfg,
		p:   parser.New(lexer.New(cfg.Source, cfg.Delimiter)),
	}
	if cfg.HasHeader {
		header, err := r.p.Next()
		switch {
		case err == io.EOF:
		case err != nil:
			return nil, convertParseError(err)
		default:
			r.header = header
		}
	}
	return r, nil
}

// Config returns the settings the Reader was built with, without the source.
func (r *Reader) Config() ReaderConfig {
	cfg := r.cfg
	cfg.Source = nil
	return cfg
}

// Headers returns a copy of the header row. It returns ErrNoHeader when the
// Reader was configured without one or the input was empty.
func (r *Reader) Headers() (Row, error) {
	if r.header == nil {
		return nil, ErrNoHeader
	}
	return r.header.Clone(), nil
}

// RowNumber returns the number of data rows read so far.
func (r *Reader) RowNumber() int {
	return r.rows
}

// Read returns the next data row, or io.EOF once the input is exhausted.
// Malformed input yields a *ParseError and source failures an *IOError.
func (r *Reader) Read() (Row, error) {
	fields, err := r.p.Next()
	if err != nil {
		return nil, convertParseError(err)
	}
	r.rows++
	return Row(fields), nil
}

// ReadAll reads every remaining data row.
func (r *Reader) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Entries returns a forward-only sequence of the remaining data rows. A
// failure is yielded once, paired with a nil row, and ends the sequence.
// Ranging over it again resumes where the previous loop stopped.
//
//	for row, err := range r.Entries() {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (r *Reader) Entries() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

func convertParseError(err error) error {
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{
			Row:    syntaxErr.Record,
			Line:   syntaxErr.Line,
			Column: syntaxErr.Column,
			Offset: syntaxErr.Offset,
			Msg:    syntaxErr.Message,
		}
	}
	var readErr *parser.ReadError
	if errors.As(err, &readErr) {
		return &IOError{Op: "read", Err: readErr.Err}
	}
	return err
}

// ReaderBuilder assembles a ReaderConfig step by step. It starts from
// DefaultReaderConfig.
//
//	r, err := csvdoc.NewReaderBuilder().
//		Delimiter(';').
//		HasHeader(false).
//		Source(f).
//		Build()
type ReaderBuilder struct {
	cfg ReaderConfig
}

// NewReaderBuilder returns a builder holding the default configuration.
func NewReaderBuilder() *ReaderBuilder {
	return &ReaderBuilder{cfg: DefaultReaderConfig()}
}

// Delimiter sets the field delimiter.
func (b *ReaderBuilder) Delimiter(d rune) *ReaderBuilder {
	b.cfg.Delimiter = d
	return b
}

// HasHeader sets whether the first record is a header row.
func (b *ReaderBuilder) HasHeader(has bool) *ReaderBuilder {
	b.cfg.HasHeader = has
	return b
}

// Source sets the input stream.
func (b *ReaderBuilder) Source(src io.Reader) *ReaderBuilder {
	b.cfg.Source = src
	return b
}

// Config returns the configuration built so far.
func (b *ReaderBuilder) Config() ReaderConfig {
	return b.cfg
}

// Build validates the configuration and creates the Reader.
func (b *ReaderBuilder) Build() (*Reader, error) {
	return NewReader(b.cfg)
}
