package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	csvdoc "github.com/KimNorgaard/go-csvdoc"
)

// session carries what every command needs.
type session struct {
	cfg     Config
	flags   *globalFlags
	in      io.Reader
	out     io.Writer
	workDir string
}

func (s *session) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.workDir, p)
}

func (s *session) reader() (*csvdoc.Reader, func(), error) {
	delim, err := s.cfg.delimiter()
	if err != nil {
		return nil, nil, err
	}
	src, closer := s.in, func() {}
	if s.flags.file != "" && s.flags.file != "-" {
		f, err := os.Open(s.path(s.flags.file))
		if err != nil {
			return nil, nil, err
		}
		src, closer = f, func() { f.Close() }
	}
	r, err := csvdoc.NewReaderBuilder().
		Delimiter(delim).
		HasHeader(s.cfg.hasHeader()).
		Source(src).
		Build()
	if err != nil {
		closer()
		return nil, nil, err
	}
	return r, closer, nil
}

func (s *session) document() (*csvdoc.Document, error) {
	r, closer, err := s.reader()
	if err != nil {
		return nil, err
	}
	defer closer()
	return csvdoc.NewDocument(r)
}

func (s *session) writeOptions(doc *csvdoc.Document) ([]csvdoc.Option, error) {
	delim := doc.Delimiter()
	if s.flags.outDelimiter != "" {
		var err error
		if delim, err = (Config{Delimiter: s.flags.outDelimiter}).delimiter(); err != nil {
			return nil, err
		}
	}
	return []csvdoc.Option{csvdoc.WithDelimiter(delim), csvdoc.WithCRLF(s.cfg.crlf())}, nil
}

func (s *session) write(doc *csvdoc.Document) error {
	opts, err := s.writeOptions(doc)
	if err != nil {
		return err
	}
	return doc.WriteCSV(s.out, opts...)
}

func noArgs(cmd string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", errUsage, cmd)
	}
	return nil
}

func (s *session) cmdFmt(args []string) error {
	if err := noArgs("fmt", args); err != nil {
		return err
	}
	doc, err := s.document()
	if err != nil {
		return err
	}
	return s.write(doc)
}

func (s *session) cmdValidate(args []string) error {
	if err := noArgs("validate", args); err != nil {
		return err
	}
	doc, err := s.document()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "ok: %d rows, %d columns\n", doc.Len(), len(doc.Columns()))
	return nil
}

func (s *session) cmdHeaders(args []string) error {
	if err := noArgs("headers", args); err != nil {
		return err
	}
	r, closer, err := s.reader()
	if err != nil {
		return err
	}
	defer closer()
	header, err := r.Headers()
	if err != nil {
		return err
	}
	for _, name := range header {
		fmt.Fprintln(s.out, name)
	}
	return nil
}

func (s *session) cmdColumn(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: column takes exactly one column name", errUsage)
	}
	doc, err := s.document()
	if err != nil {
		return err
	}
	values, err := csvdoc.Column[string](doc, args[0])
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(s.out, v)
	}
	return nil
}

func (s *session) cmdFilter(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: filter needs at least one COL=VALUE", errUsage)
	}
	type cond struct{ col, value string }
	conds := make([]cond, len(args))
	for i, arg := range args {
		col, value, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return fmt.Errorf("%w: bad filter %q, want COL=VALUE", errUsage, arg)
		}
		conds[i] = cond{col, value}
	}

	doc, err := s.document()
	if err != nil {
		return err
	}
	for _, c := range conds {
		if !doc.HasColumn(c.col) {
			_, err := doc.ColumnIndex(c.col)
			return err
		}
	}
	err = doc.Retain(func(e csvdoc.DocEntry) (bool, error) {
		for _, c := range conds {
			v, err := e.Raw(c.col)
			if err != nil || v != c.value {
				return false, err
			}
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	return s.write(doc)
}

func (s *session) cmdCount(args []string) error {
	if err := noArgs("count", args); err != nil {
		return err
	}
	r, closer, err := s.reader()
	if err != nil {
		return err
	}
	defer closer()
	n := 0
	for _, err := range r.Entries() {
		if err != nil {
			return err
		}
		n++
	}
	fmt.Fprintln(s.out, n)
	return nil
}
