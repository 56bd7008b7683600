package testutil

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
)

// TestdataFS holds the CSV fixtures shared by the package tests.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData reads and returns the content of an embedded fixture.
func ReadTestData(name string) ([]byte, error) {
	path := fmt.Sprintf("testdata/%s", name)
	data, err := fs.ReadFile(TestdataFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test data file '%s': %w", name, err)
	}
	return data, nil
}

// MustOpen returns a reader over an embedded fixture and panics if it does
// not exist.
func MustOpen(name string) io.Reader {
	data, err := ReadTestData(name)
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(data)
}

// Fixtures lists the names of all embedded fixtures.
func Fixtures() ([]string, error) {
	entries, err := fs.ReadDir(TestdataFS, "testdata")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
