package csvdoc

import (
	"bytes"
)

// Parse reads a complete comma-separated buffer with a header row into a
// Document. Use NewReader and NewDocument for other settings.
func Parse(data []byte) (*Document, error) {
	cfg := DefaultReaderConfig()
	cfg.Source = bytes.NewReader(data)
	r, err := NewReader(cfg)
	if err != nil {
		return nil, err
	}
	return NewDocument(r)
}

// Format renders rows as delimited text, one record per row.
func Format(rows []Row, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
