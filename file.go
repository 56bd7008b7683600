package csvdoc

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"
)

const filePerms = 0o644

// ReadFile reads the file at path into a Document. cfg.Source is ignored.
func ReadFile(path string, cfg ReaderConfig) (*Document, error) {
	return readFile(path, cfg, nil)
}

// ReadFileFiltered is ReadFile keeping only the rows for which keep
// reports true. Rejected rows are still parsed and width-checked.
func ReadFileFiltered(path string, cfg ReaderConfig, keep func(DocEntry) bool) (*Document, error) {
	return readFile(path, cfg, keep)
}

func readFile(path string, cfg ReaderConfig, keep func(DocEntry) bool) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}
	defer f.Close()

	cfg.Source = f
	r, err := NewReader(cfg)
	if err != nil {
		return nil, err
	}
	return newDocument(r, keep)
}

// WriteFile writes the document to path, replacing any existing file
// atomically: readers of path see either the old content or the complete
// new one. Without a WithDelimiter option the document's own delimiter is
// used.
func (d *Document) WriteFile(path string, opts ...Option) error {
	var buf bytes.Buffer
	if err := d.WriteCSV(&buf, opts...); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory that is renamed into place. An existing file keeps its mode. A
// new file gets mode 0644, set after the rename: until then it has the
// temporary file's 0600, so the mode change is not atomic.
func WriteFileAtomic(path string, data []byte) error {
	_, err := os.Stat(path)
	created := errors.Is(err, fs.ErrNotExist)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return &IOError{Op: "create", Err: err}
	}
	if !created {
		return nil
	}
	if err := os.Chmod(path, filePerms); err != nil {
		return &IOError{Op: "create", Err: err}
	}
	return nil
}
