package csvdoc

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// Document is an in-memory table: an optional header row and an ordered
// list of data rows. With a header every row has exactly the header's
// width and fields can be addressed by column name. The zero value is an
// empty document without a header.
//
// A Document is not safe for concurrent use. While a view obtained from
// Rows, RowsMut or Update is live, methods that change the document's shape
// fail with ErrDocumentBusy.
//
// Row indexes taken by methods are 0-based; row numbers reported in errors
// and by DocEntry.Number are 1-based and exclude the header.
type Document struct {
	header Row
	index  map[string]int
	rows   []Row
	delim  rune
	lease  lease
}

// NewDocument reads everything from r into a Document. The header, if r
// has one, becomes the document's header. Nothing is returned on error:
// a malformed row, a source failure, a duplicate header name or a row
// whose width differs from the header all abort construction.
func NewDocument(r *Reader) (*Document, error) {
	return newDocument(r, nil)
}

func newDocument(r *Reader, keep func(DocEntry) bool) (*Document, error) {
	if r == nil {
		return nil, configError("nil reader")
	}
	d := &Document{delim: r.cfg.Delimiter}
	if header, err := r.Headers(); err == nil {
		if err := d.setHeader(header); err != nil {
			return nil, err
		}
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			return d, nil
		}
		if err != nil {
			return nil, err
		}
		if err := d.checkWidth(row, r.RowNumber()); err != nil {
			return nil, err
		}
		if keep != nil && !keep(DocEntry{row: row, index: d.index, num: r.RowNumber()}) {
			continue
		}
		d.rows = append(d.rows, row)
	}
}

// WithHeaders returns an empty Document with the given column names.
func WithHeaders(names ...string) (*Document, error) {
	if len(names) == 0 {
		return nil, configError("document needs at least one column name")
	}
	d := &Document{}
	if err := d.setHeader(slices.Clone(names)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) setHeader(header Row) error {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if first, ok := index[name]; ok {
			return &DuplicateHeaderError{Name: name, First: first, Second: i}
		}
		index[name] = i
	}
	d.header = header
	d.index = index
	return nil
}

func (d *Document) checkWidth(row Row, num int) error {
	// A zero-width row cannot be written back; it would read as {""}.
	if len(row) == 0 {
		return fmt.Errorf("%w: row %d has no fields", ErrRowWidthMismatch, num)
	}
	if d.header != nil && len(row) != len(d.header) {
		return &WidthError{Row: num, Want: len(d.header), Got: len(row)}
	}
	return nil
}

// Header returns a copy of the header row, or nil if there is none.
func (d *Document) Header() Row {
	return d.header.Clone()
}

// Columns returns the column names in header order.
func (d *Document) Columns() []string {
	return slices.Clone([]string(d.header))
}

// HasColumn reports whether the header names a column name.
func (d *Document) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (d *Document) ColumnIndex(name string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return -1, &FieldError{Column: name, Index: -1, Err: ErrUnknownColumn}
	}
	return i, nil
}

// Len returns the number of data rows.
func (d *Document) Len() int {
	return len(d.rows)
}

// Delimiter returns the delimiter of the input the document was read from,
// or ',' for documents built in memory.
func (d *Document) Delimiter() rune {
	if d.delim == 0 {
		return defaultDelimiter
	}
	return d.delim
}

// Clone returns a deep copy of d with no live views.
func (d *Document) Clone() *Document {
	c := &Document{
		header: d.header.Clone(),
		index:  cloneIndex(d.index),
		delim:  d.delim,
	}
	if d.rows != nil {
		c.rows = make([]Row, len(d.rows))
		for i, row := range d.rows {
			c.rows[i] = row.Clone()
		}
	}
	return c
}

func (d *Document) entry(i int) DocEntry {
	return DocEntry{row: d.rows[i], index: d.index, num: i + 1}
}

func (d *Document) checkRow(i int) error {
	if i < 0 || i >= len(d.rows) {
		return fmt.Errorf("%w: row index %d, document has %d rows", ErrIndexOutOfRange, i, len(d.rows))
	}
	return nil
}

// Entry returns a read-only view of row i.
func (d *Document) Entry(i int) (DocEntry, error) {
	if err := d.checkRow(i); err != nil {
		return DocEntry{}, err
	}
	return d.entry(i), nil
}

// Insert appends a copy of row. With a header its width must match; a row
// without fields is always rejected.
func (d *Document) Insert(row Row) error {
	if d.lease.busy() {
		return ErrDocumentBusy
	}
	if err := d.checkWidth(row, len(d.rows)+1); err != nil {
		return err
	}
	d.rows = append(d.rows, row.Clone())
	return nil
}

// InsertAll appends copies of rows. Either all rows are inserted or, if any
// has the wrong width, none is.
func (d *Document) InsertAll(rows ...Row) error {
	if d.lease.busy() {
		return ErrDocumentBusy
	}
	for i, row := range rows {
		if err := d.checkWidth(row, len(d.rows)+i+1); err != nil {
			return err
		}
	}
	for _, row := range rows {
		d.rows = append(d.rows, row.Clone())
	}
	return nil
}

// Append inserts copies of every row of other. Both documents must have
// the same header, or neither may have one.
func (d *Document) Append(other *Document) error {
	if d.lease.busy() {
		return ErrDocumentBusy
	}
	if !d.header.Equal(other.header) {
		return fmt.Errorf("%w: cannot append rows with header %v to header %v",
			ErrRowWidthMismatch, other.header, d.header)
	}
	rows := make([]Row, len(other.rows))
	for i, row := range other.rows {
		rows[i] = row.Clone()
	}
	d.rows = append(d.rows, rows...)
	return nil
}

// Remove deletes row i.
func (d *Document) Remove(i int) error {
	if d.lease.busy() {
		return ErrDocumentBusy
	}
	if err := d.checkRow(i); err != nil {
		return err
	}
	d.rows = slices.Delete(d.rows, i, i+1)
	return nil
}

// RemoveWhere deletes every row whose named field equals the text form of
// value and returns how many were removed.
func (d *Document) RemoveWhere(name string, value any) (int, error) {
	if d.lease.busy() {
		return 0, ErrDocumentBusy
	}
	col, err := d.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	want := text(value)
	n := len(d.rows)
	d.rows = slices.DeleteFunc(d.rows, func(row Row) bool {
		return row[col] == want
	})
	return n - len(d.rows), nil
}

// Where returns a sequence of views of the rows whose named field equals
// the text form of value. Like Rows, the loop holds a shared lease, so the
// document cannot change shape while the views are live.
func (d *Document) Where(name string, value any) (iter.Seq[DocEntry], error) {
	col, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	want := text(value)
	return func(yield func(DocEntry) bool) {
		for e := range d.Rows() {
			if e.row[col] == want && !yield(e) {
				return
			}
		}
	}, nil
}

// Retain keeps the rows for which keep reports true, in their original
// order, and removes the rest.
//
// A row whose keep call fails is removed. Evaluation carries on with the
// next row and Retain returns every such failure joined, each wrapped in a
// *RowError carrying the row number it had before the call.
func (d *Document) Retain(keep func(DocEntry) (bool, error)) error {
	if d.lease.busy() {
		return ErrDocumentBusy
	}
	if err := d.lease.acquireShared(); err != nil {
		return err
	}
	kept := make([]Row, 0, len(d.rows))
	var errs []error
	func() {
		defer d.lease.releaseShared()
		for i := range d.rows {
			ok, err := keep(d.entry(i))
			if err != nil {
				errs = append(errs, &RowError{Row: i + 1, Err: err})
				continue
			}
			if ok {
				kept = append(kept, d.rows[i])
			}
		}
	}()
	d.rows = kept
	return errors.Join(errs...)
}

// Rows returns a sequence of read-only views, one per row, built from the
// document's state when the loop starts. Rows loops may nest. Starting one
// while a RowsMut loop or Update call is in progress panics with
// ErrDocumentBusy.
func (d *Document) Rows() iter.Seq[DocEntry] {
	return func(yield func(DocEntry) bool) {
		if err := d.lease.acquireShared(); err != nil {
			panic(err)
		}
		defer d.lease.releaseShared()
		for i := range d.rows {
			if !yield(d.entry(i)) {
				return
			}
		}
	}
}

// RowsMut returns a sequence of mutable views, one per row. Each view
// expires when its loop step ends. Starting the loop while any other view
// is live panics with ErrDocumentBusy.
func (d *Document) RowsMut() iter.Seq[*DocEntryMut] {
	return func(yield func(*DocEntryMut) bool) {
		if err := d.lease.acquireExclusive(); err != nil {
			panic(err)
		}
		defer d.lease.releaseExclusive()
		for i := range d.rows {
			m := &DocEntryMut{entry: d.entry(i)}
			ok := yield(m)
			m.expire()
			if !ok {
				return
			}
		}
	}
}

// Update calls fn with a mutable view of row i. The view expires when fn
// returns.
func (d *Document) Update(i int, fn func(*DocEntryMut) error) error {
	if err := d.checkRow(i); err != nil {
		return err
	}
	if err := d.lease.acquireExclusive(); err != nil {
		return err
	}
	defer d.lease.releaseExclusive()
	m := &DocEntryMut{entry: d.entry(i)}
	defer m.expire()
	return fn(m)
}

// SetCell replaces the named field of row i with the text form of v.
func (d *Document) SetCell(i int, name string, v any) error {
	return d.Update(i, func(m *DocEntryMut) error {
		return m.Set(name, v)
	})
}

// Cell parses the named field of row i as a T.
func Cell[T Value](d *Document, i int, name string) (T, error) {
	e, err := d.Entry(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return Lookup[T](e, name)
}

// Column parses the named field of every row as a T. The first field that
// fails to parse is reported as a *FieldError carrying its row number.
func Column[T Value](d *Document, name string) ([]T, error) {
	col, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	return column[T](d, col, name)
}

// ColumnAt is Column for a column position. Without a header every row
// must be wide enough to have field i.
func ColumnAt[T Value](d *Document, i int) ([]T, error) {
	if i < 0 || (d.header != nil && i >= len(d.header)) {
		return nil, &FieldError{Index: i, Err: ErrIndexOutOfRange}
	}
	var name string
	if d.header != nil {
		name = d.header[i]
	}
	return column[T](d, i, name)
}

func column[T Value](d *Document, col int, name string) ([]T, error) {
	values := make([]T, 0, len(d.rows))
	for n, row := range d.rows {
		if col >= len(row) {
			return nil, &FieldError{Row: n + 1, Column: name, Index: col, Err: ErrIndexOutOfRange}
		}
		v, err := parseValue[T](row[col])
		if err != nil {
			return nil, &FieldError{
				Row:    n + 1,
				Column: name,
				Index:  col,
				Type:   typeName[T](),
				Value:  row[col],
				Err:    ErrTypeConversion,
				Cause:  err,
			}
		}
		values = append(values, v)
	}
	return values, nil
}

// WriteTo writes the header, if any, then every row to w and flushes it.
func (d *Document) WriteTo(w *Writer) error {
	if w == nil {
		return configError("nil writer")
	}
	if d.header != nil {
		if err := w.Write(d.header); err != nil {
			return err
		}
	}
	return w.WriteAll(d.rows)
}

// WriteCSV writes the document to w as delimited text. Without a
// WithDelimiter option the document's own delimiter is used.
func (d *Document) WriteCSV(w io.Writer, opts ...Option) error {
	cw, err := NewWriter(w, append([]Option{WithDelimiter(d.Delimiter())}, opts...)...)
	if err != nil {
		return err
	}
	return d.WriteTo(cw)
}

// String renders the document comma-separated with LF terminators.
func (d *Document) String() string {
	var sb strings.Builder
	_ = d.WriteCSV(&sb, WithCRLF(false))
	return sb.String()
}
