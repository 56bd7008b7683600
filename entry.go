package csvdoc

import "maps"

// Entry is the read access shared by DocEntry and *DocEntryMut.
type Entry interface {
	// Raw returns the text of the named field.
	Raw(name string) (string, error)
	// ColumnIndex returns the position of the named column.
	ColumnIndex(name string) (int, error)
	// Number returns the 1-based data row number of the entry.
	Number() int
}

// DocEntry is a read-only view of one Document row that resolves fields by
// column name. It is valid only while the loop step or callback that
// produced it runs.
type DocEntry struct {
	row   Row
	index map[string]int
	num   int
}

// Number returns the 1-based data row number of the entry.
func (e DocEntry) Number() int {
	return e.num
}

// Len returns the number of fields in the row.
func (e DocEntry) Len() int {
	return len(e.row)
}

// Row returns a copy of the row's fields.
func (e DocEntry) Row() Row {
	return e.row.Clone()
}

// Columns returns the column names of the owning document, in header order.
func (e DocEntry) Columns() []string {
	names := make([]string, len(e.index))
	for name, i := range e.index {
		names[i] = name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (e DocEntry) ColumnIndex(name string) (int, error) {
	i, ok := e.index[name]
	if !ok {
		return -1, &FieldError{Row: e.num, Column: name, Index: -1, Err: ErrUnknownColumn}
	}
	return i, nil
}

// Raw returns the text of the named field.
func (e DocEntry) Raw(name string) (string, error) {
	i, err := e.ColumnIndex(name)
	if err != nil {
		return "", err
	}
	if i >= len(e.row) {
		return "", &FieldError{Row: e.num, Column: name, Index: i, Err: ErrIndexOutOfRange}
	}
	return e.row[i], nil
}

// Map returns the entry as a column name to text map.
func (e DocEntry) Map() map[string]string {
	m := make(map[string]string, len(e.index))
	for name, i := range e.index {
		if i < len(e.row) {
			m[name] = e.row[i]
		}
	}
	return m
}

func (e DocEntry) String() string {
	return e.row.String()
}

// DocEntryMut is a DocEntry that can also change field values in place.
// Once the loop step or callback that produced it returns, every method
// fails with ErrViewExpired.
type DocEntryMut struct {
	entry   DocEntry
	expired bool
}

// Number returns the 1-based data row number of the entry.
func (m *DocEntryMut) Number() int {
	return m.entry.num
}

// ColumnIndex returns the position of the named column.
func (m *DocEntryMut) ColumnIndex(name string) (int, error) {
	if m.expired {
		return -1, ErrViewExpired
	}
	return m.entry.ColumnIndex(name)
}

// Raw returns the text of the named field.
func (m *DocEntryMut) Raw(name string) (string, error) {
	if m.expired {
		return "", ErrViewExpired
	}
	return m.entry.Raw(name)
}

// Entry returns the read-only view of the same row.
func (m *DocEntryMut) Entry() (DocEntry, error) {
	if m.expired {
		return DocEntry{}, ErrViewExpired
	}
	return m.entry, nil
}

// Set replaces the named field with the text form of v. It never changes
// the width of the row.
func (m *DocEntryMut) Set(name string, v any) error {
	if m.expired {
		return ErrViewExpired
	}
	i, err := m.entry.ColumnIndex(name)
	if err != nil {
		return err
	}
	if i >= len(m.entry.row) {
		return &FieldError{Row: m.entry.num, Column: name, Index: i, Err: ErrIndexOutOfRange}
	}
	s, err := formatValue(v)
	if err != nil {
		return &FieldError{Row: m.entry.num, Column: name, Index: i, Type: "text", Err: ErrTypeConversion, Cause: err}
	}
	m.entry.row[i] = s
	return nil
}

func (m *DocEntryMut) expire() {
	m.expired = true
	m.entry = DocEntry{num: m.entry.num}
}

// Lookup parses the named field of e as a T.
//
//	for e := range doc.Rows() {
//		age, err := csvdoc.Lookup[int](e, "Age")
//		...
//	}
func Lookup[T Value](e Entry, name string) (T, error) {
	var zero T
	s, err := e.Raw(name)
	if err != nil {
		return zero, err
	}
	v, err := parseValue[T](s)
	if err != nil {
		i, _ := e.ColumnIndex(name)
		return zero, &FieldError{
			Row:    e.Number(),
			Column: name,
			Index:  i,
			Type:   typeName[T](),
			Value:  s,
			Err:    ErrTypeConversion,
			Cause:  err,
		}
	}
	return v, nil
}

func cloneIndex(index map[string]int) map[string]int {
	if index == nil {
		return nil
	}
	return maps.Clone(index)
}
