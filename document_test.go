package csvdoc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	csvdoc "github.com/KimNorgaard/go-csvdoc"
	"github.com/KimNorgaard/go-csvdoc/internal/testutil"
)

func students(t *testing.T) *csvdoc.Document {
	t.Helper()
	r, err := csvdoc.NewReader(csvdoc.ReaderConfig{
		HasHeader: true,
		Source:    testutil.MustOpen("students.csv"),
	})
	require.NoError(t, err)
	doc, err := csvdoc.NewDocument(r)
	require.NoError(t, err)
	return doc
}

func names(t *testing.T, doc *csvdoc.Document) []string {
	t.Helper()
	names, err := csvdoc.Column[string](doc, "Name")
	require.NoError(t, err)
	return names
}

func TestNewDocument(t *testing.T) {
	doc := students(t)
	require.Equal(t, csvdoc.Row{"Name", "Age", "Email", "School"}, doc.Header())
	require.Equal(t, []string{"Name", "Age", "Email", "School"}, doc.Columns())
	require.Equal(t, 4, doc.Len())
	require.Equal(t, ',', doc.Delimiter())
	require.True(t, doc.HasColumn("Email"))
	require.False(t, doc.HasColumn("email"))

	i, err := doc.ColumnIndex("School")
	require.NoError(t, err)
	require.Equal(t, 3, i)
	_, err = doc.ColumnIndex("Grade")
	require.ErrorIs(t, err, csvdoc.ErrUnknownColumn)
}

func TestNewDocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		target   error
		expected string
	}{
		{
			name:     "duplicate header",
			input:    "a,b,a\n1,2,3\n",
			target:   csvdoc.ErrDuplicateHeaderName,
			expected: `csvdoc: duplicate header name "a" at columns 0 and 2`,
		},
		{
			name:     "short row",
			input:    "a,b\n1,2\n3\n",
			target:   csvdoc.ErrRowWidthMismatch,
			expected: "csvdoc: row 2 has 1 fields, header has 2",
		},
		{
			name:     "long row",
			input:    "a,b\n1,2,3\n",
			target:   csvdoc.ErrRowWidthMismatch,
			expected: "csvdoc: row 1 has 3 fields, header has 2",
		},
		{
			name:     "malformed row",
			input:    "a,b\n1,\"2\n",
			target:   csvdoc.ErrMalformedRow,
			expected: "csvdoc: malformed row 2 at line 2, column 3 (offset 6): unterminated quoted field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReader(t, tt.input, true)
			doc, err := csvdoc.NewDocument(r)
			require.Nil(t, doc)
			require.ErrorIs(t, err, tt.target)
			require.EqualError(t, err, tt.expected)
		})
	}

	_, err := csvdoc.NewDocument(nil)
	require.ErrorIs(t, err, csvdoc.ErrConfiguration)
}

func TestDocumentWithoutHeader(t *testing.T) {
	doc, err := csvdoc.NewDocument(newReader(t, "a,b,c\n1\n", false))
	require.NoError(t, err)
	require.Nil(t, doc.Header())
	require.Equal(t, 2, doc.Len())

	e, err := doc.Entry(0)
	require.NoError(t, err)
	require.Equal(t, csvdoc.Row{"a", "b", "c"}, e.Row())
	_, err = e.Raw("a")
	require.ErrorIs(t, err, csvdoc.ErrUnknownColumn)

	_, err = csvdoc.ColumnAt[string](doc, 1)
	var ferr *csvdoc.FieldError
	require.ErrorAs(t, err, &ferr)
	require.ErrorIs(t, err, csvdoc.ErrIndexOutOfRange)
	require.Equal(t, 2, ferr.Row)

	first, err := csvdoc.ColumnAt[string](doc, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "1"}, first)

	require.NoError(t, doc.Insert(csvdoc.Row{"any", "width", "goes", "here"}))
}

func TestWithHeaders(t *testing.T) {
	doc, err := csvdoc.WithHeaders("A", "B")
	require.NoError(t, err)
	require.Equal(t, 0, doc.Len())

	err = doc.Insert(csvdoc.Row{"1", "2", "3"})
	require.ErrorIs(t, err, csvdoc.ErrRowWidthMismatch)
	var werr *csvdoc.WidthError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, csvdoc.WidthError{Row: 1, Want: 2, Got: 3}, *werr)
	require.Equal(t, 0, doc.Len())

	require.NoError(t, doc.Insert(csvdoc.Row{"1", "2"}))
	a, err := csvdoc.Column[string](doc, "A")
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, a)

	_, err = csvdoc.WithHeaders()
	require.ErrorIs(t, err, csvdoc.ErrConfiguration)
	_, err = csvdoc.WithHeaders("A", "A")
	require.ErrorIs(t, err, csvdoc.ErrDuplicateHeaderName)
}

func TestDocumentInsertCopies(t *testing.T) {
	doc, err := csvdoc.WithHeaders("A")
	require.NoError(t, err)
	row := csvdoc.Row{"x"}
	require.NoError(t, doc.Insert(row))
	row[0] = "changed"

	got, err := csvdoc.Cell[string](doc, 0, "A")
	require.NoError(t, err)
	require.Equal(t, "x", got)
}

func TestDocumentInsertAll(t *testing.T) {
	doc, err := csvdoc.WithHeaders("A", "B")
	require.NoError(t, err)

	err = doc.InsertAll(csvdoc.Row{"1", "2"}, csvdoc.Row{"3"})
	var werr *csvdoc.WidthError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, 2, werr.Row)
	require.Equal(t, 0, doc.Len())

	require.NoError(t, doc.InsertAll(csvdoc.Row{"1", "2"}, csvdoc.Row{"3", "4"}))
	require.Equal(t, "A,B\n1,2\n3,4\n", doc.String())
}

func TestDocumentAppend(t *testing.T) {
	doc := students(t)
	other := doc.Clone()
	require.NoError(t, doc.Append(other))
	require.Equal(t, 8, doc.Len())
	require.Equal(t, 4, other.Len())

	mismatched, err := csvdoc.WithHeaders("Name")
	require.NoError(t, err)
	require.ErrorIs(t, doc.Append(mismatched), csvdoc.ErrRowWidthMismatch)
}

func TestDocumentClone(t *testing.T) {
	doc := students(t)
	clone := doc.Clone()
	require.NoError(t, clone.SetCell(0, "Name", "Changed"))
	require.NoError(t, clone.Remove(1))

	require.Equal(t, []string{"Mike", "Jenny", "Ann", "Tom"}, names(t, doc))
	require.Equal(t, []string{"Changed", "Ann", "Tom"}, names(t, clone))
	if diff := cmp.Diff(doc.Columns(), clone.Columns()); diff != "" {
		t.Errorf("clone header mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentRemove(t *testing.T) {
	doc := students(t)
	require.NoError(t, doc.Remove(0))
	require.ErrorIs(t, doc.Remove(3), csvdoc.ErrIndexOutOfRange)
	require.ErrorIs(t, doc.Remove(-1), csvdoc.ErrIndexOutOfRange)
	require.Equal(t, []string{"Jenny", "Ann", "Tom"}, names(t, doc))

	n, err := doc.RemoveWhere("Age", 15)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"Jenny", "Tom"}, names(t, doc))

	_, err = doc.RemoveWhere("Grade", 1)
	require.ErrorIs(t, err, csvdoc.ErrUnknownColumn)
}

func TestDocumentWhere(t *testing.T) {
	doc := students(t)
	entries, err := doc.Where("School", "Springfield High School")
	require.NoError(t, err)

	var got []map[string]string
	var numbers []int
	for e := range entries {
		got = append(got, e.Map())
		numbers = append(numbers, e.Number())
	}
	expected := []map[string]string{
		{"Name": "Jenny", "Age": "16", "Email": "jeng@mail.com", "School": "Springfield High School"},
		{"Name": "Ann", "Age": "15", "Email": "ann@mail.com", "School": "Springfield High School"},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Where mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []int{2, 3}, numbers)

	_, err = doc.Where("Grade", 1)
	require.ErrorIs(t, err, csvdoc.ErrUnknownColumn)
}

func TestDocumentWhereHoldsLease(t *testing.T) {
	doc := students(t)
	entries, err := doc.Where("Age", 15)
	require.NoError(t, err)

	var seen []string
	for e := range entries {
		require.ErrorIs(t, doc.Remove(0), csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.Insert(csvdoc.Row{"a", "b", "c", "d"}), csvdoc.ErrDocumentBusy)
		_, err := doc.RemoveWhere("Age", 15)
		require.ErrorIs(t, err, csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.Retain(func(csvdoc.DocEntry) (bool, error) { return false, nil }), csvdoc.ErrDocumentBusy)
		name, err := e.Raw("Name")
		require.NoError(t, err)
		seen = append(seen, name)
	}
	require.Equal(t, []string{"Mike", "Ann"}, seen)
	require.Equal(t, 4, doc.Len())

	// The sequence reads the current rows each time it is ranged over.
	require.NoError(t, doc.Remove(0))
	seen = seen[:0]
	for e := range entries {
		require.Equal(t, 2, e.Number())
		name, err := e.Raw("Name")
		require.NoError(t, err)
		seen = append(seen, name)
	}
	require.Equal(t, []string{"Ann"}, seen)
}

func TestDocumentRejectsZeroWidthRow(t *testing.T) {
	var doc csvdoc.Document
	require.ErrorIs(t, doc.Insert(csvdoc.Row{}), csvdoc.ErrRowWidthMismatch)
	require.ErrorIs(t, doc.InsertAll(csvdoc.Row{"a"}, nil), csvdoc.ErrRowWidthMismatch)
	require.Equal(t, 0, doc.Len())

	require.NoError(t, doc.Insert(csvdoc.Row{""}))
	parsed, err := csvdoc.NewDocument(newReader(t, doc.String(), false))
	require.NoError(t, err)
	e, err := parsed.Entry(0)
	require.NoError(t, err)
	require.Equal(t, csvdoc.Row{""}, e.Row())
}

func TestDocumentRetain(t *testing.T) {
	doc := students(t)
	err := doc.Retain(func(e csvdoc.DocEntry) (bool, error) {
		age, err := csvdoc.Lookup[int](e, "Age")
		return age == 15, err
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Mike", "Ann"}, names(t, doc))

	require.NoError(t, doc.Retain(func(csvdoc.DocEntry) (bool, error) { return false, nil }))
	require.Equal(t, 0, doc.Len())
	require.Equal(t, "Name,Age,Email,School\n", doc.String())
}

func TestDocumentRetainErrors(t *testing.T) {
	doc := students(t)
	boom := errors.New("boom")
	err := doc.Retain(func(e csvdoc.DocEntry) (bool, error) {
		switch e.Number() {
		case 2, 4:
			return true, boom
		}
		return true, nil
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"Mike", "Ann"}, names(t, doc))

	var rerr *csvdoc.RowError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, 2, rerr.Row)
	require.Equal(t, "csvdoc: row 2: boom\ncsvdoc: row 4: boom", err.Error())
}

func TestColumnTypeConversion(t *testing.T) {
	doc, err := csvdoc.Parse([]byte("Name,Age\nMike,15\nJenny,sixteen\n"))
	require.NoError(t, err)

	_, err = csvdoc.Column[int](doc, "Age")
	require.ErrorIs(t, err, csvdoc.ErrTypeConversion)
	var ferr *csvdoc.FieldError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, 2, ferr.Row)
	require.Equal(t, "Age", ferr.Column)
	require.Equal(t, "sixteen", ferr.Value)
	require.True(t, strings.HasPrefix(err.Error(),
		`csvdoc: type conversion failed: row 2, column "Age": cannot parse "sixteen" as int`))

	_, err = csvdoc.Column[int](doc, "Grade")
	require.ErrorIs(t, err, csvdoc.ErrUnknownColumn)

	_, err = csvdoc.ColumnAt[int](doc, 2)
	require.ErrorIs(t, err, csvdoc.ErrIndexOutOfRange)
}

func TestCell(t *testing.T) {
	doc := students(t)
	age, err := csvdoc.Cell[uint8](doc, 3, "Age")
	require.NoError(t, err)
	require.Equal(t, uint8(17), age)

	_, err = csvdoc.Cell[int](doc, 4, "Age")
	require.ErrorIs(t, err, csvdoc.ErrIndexOutOfRange)

	_, err = csvdoc.Cell[bool](doc, 0, "Age")
	var ferr *csvdoc.FieldError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, 1, ferr.Row)
	require.Equal(t, 1, ferr.Index)
}

func TestDocumentRows(t *testing.T) {
	doc := students(t)

	var total int
	for e := range doc.Rows() {
		age, err := csvdoc.Lookup[int](e, "Age")
		require.NoError(t, err)
		total += age

		// Read-only loops nest.
		for range doc.Rows() {
			break
		}
	}
	require.Equal(t, 63, total)

	for e := range doc.Rows() {
		require.Equal(t, []string{"Name", "Age", "Email", "School"}, e.Columns())
		require.Equal(t, 4, e.Len())
		require.Equal(t, "Mike,15,kime@mail.com,Marktown High School", e.String())
		break
	}
}

func TestDocumentBusy(t *testing.T) {
	doc := students(t)

	for range doc.Rows() {
		require.ErrorIs(t, doc.Insert(csvdoc.Row{"a", "b", "c", "d"}), csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.InsertAll(), csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.Remove(0), csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.Append(doc.Clone()), csvdoc.ErrDocumentBusy)
		_, err := doc.RemoveWhere("Age", 15)
		require.ErrorIs(t, err, csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.Retain(func(csvdoc.DocEntry) (bool, error) { return true, nil }), csvdoc.ErrDocumentBusy)
		require.ErrorIs(t, doc.SetCell(0, "Age", 1), csvdoc.ErrDocumentBusy)
		require.PanicsWithValue(t, csvdoc.ErrDocumentBusy, func() {
			for range doc.RowsMut() {
			}
		})
	}

	for range doc.RowsMut() {
		require.PanicsWithValue(t, csvdoc.ErrDocumentBusy, func() {
			for range doc.Rows() {
			}
		})
		require.ErrorIs(t, doc.Update(1, func(*csvdoc.DocEntryMut) error { return nil }), csvdoc.ErrDocumentBusy)
		break
	}

	// Leases are released once loops end, even early.
	require.NoError(t, doc.Remove(0))
	require.Equal(t, 3, doc.Len())
}

func TestDocumentRowsMut(t *testing.T) {
	doc := students(t)

	var views []*csvdoc.DocEntryMut
	for e := range doc.RowsMut() {
		age, err := csvdoc.Lookup[int](e, "Age")
		require.NoError(t, err)
		require.NoError(t, e.Set("Age", age+1))
		require.ErrorIs(t, e.Set("Grade", 1), csvdoc.ErrUnknownColumn)
		views = append(views, e)
	}

	ages, err := csvdoc.Column[int](doc, "Age")
	require.NoError(t, err)
	require.Equal(t, []int{16, 17, 16, 18}, ages)

	expired := views[0]
	require.Equal(t, 1, expired.Number())
	require.ErrorIs(t, expired.Set("Age", 99), csvdoc.ErrViewExpired)
	_, err = expired.Raw("Age")
	require.ErrorIs(t, err, csvdoc.ErrViewExpired)
	_, err = expired.Entry()
	require.ErrorIs(t, err, csvdoc.ErrViewExpired)
	_, err = expired.ColumnIndex("Age")
	require.ErrorIs(t, err, csvdoc.ErrViewExpired)
	_, err = csvdoc.Lookup[int](expired, "Age")
	require.ErrorIs(t, err, csvdoc.ErrViewExpired)
}

func TestDocumentUpdate(t *testing.T) {
	doc := students(t)

	var kept *csvdoc.DocEntryMut
	err := doc.Update(1, func(e *csvdoc.DocEntryMut) error {
		kept = e
		entry, err := e.Entry()
		if err != nil {
			return err
		}
		require.Equal(t, "Jenny", entry.Row()[0])
		return e.Set("Email", nil)
	})
	require.NoError(t, err)
	require.ErrorIs(t, kept.Set("Email", "x"), csvdoc.ErrViewExpired)

	email, err := csvdoc.Cell[string](doc, 1, "Email")
	require.NoError(t, err)
	require.Empty(t, email)

	boom := errors.New("boom")
	require.ErrorIs(t, doc.Update(0, func(*csvdoc.DocEntryMut) error { return boom }), boom)
	require.ErrorIs(t, doc.Update(9, func(*csvdoc.DocEntryMut) error { return nil }), csvdoc.ErrIndexOutOfRange)
	require.ErrorIs(t, doc.SetCell(0, "Grade", 1), csvdoc.ErrUnknownColumn)
}

func TestDocumentWriteCSV(t *testing.T) {
	r, err := csvdoc.NewReader(csvdoc.ReaderConfig{
		Delimiter: ';',
		HasHeader: true,
		Source:    testutil.MustOpen("students_semicolon.csv"),
	})
	require.NoError(t, err)
	doc, err := csvdoc.NewDocument(r)
	require.NoError(t, err)
	require.Equal(t, ';', doc.Delimiter())

	var semi strings.Builder
	require.NoError(t, doc.WriteCSV(&semi, csvdoc.WithCRLF(false)))
	data, err := testutil.ReadTestData("students_semicolon.csv")
	require.NoError(t, err)
	require.Equal(t, string(data), semi.String())

	var comma strings.Builder
	require.NoError(t, doc.WriteCSV(&comma, csvdoc.WithDelimiter(',')))
	data, err = testutil.ReadTestData("students.csv")
	require.NoError(t, err)
	require.Equal(t, string(data), comma.String())

	require.ErrorIs(t, doc.WriteTo(nil), csvdoc.ErrConfiguration)
}

func TestDocumentRoundTrip(t *testing.T) {
	doc, err := csvdoc.WithHeaders("plain", "quoted")
	require.NoError(t, err)
	require.NoError(t, doc.Insert(csvdoc.NewRow("Intr,o", `say "hi"`)))
	require.NoError(t, doc.Insert(csvdoc.NewRow(34, "line\nbreak")))

	parsed, err := csvdoc.Parse([]byte(doc.String()))
	require.NoError(t, err)
	if diff := cmp.Diff(doc.String(), parsed.String()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	quoted, err := csvdoc.Column[string](parsed, "quoted")
	require.NoError(t, err)
	require.Equal(t, []string{`say "hi"`, "line\nbreak"}, quoted)
}

func TestZeroDocument(t *testing.T) {
	var doc csvdoc.Document
	require.Equal(t, 0, doc.Len())
	require.NoError(t, doc.Insert(csvdoc.Row{"a"}))
	require.Equal(t, "a\n", doc.String())
	_, err := doc.Entry(1)
	require.ErrorIs(t, err, csvdoc.ErrIndexOutOfRange)
}
