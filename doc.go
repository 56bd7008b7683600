/*
Package csvdoc reads and writes delimiter-separated tabular text (CSV) and
provides Document, an in-memory table with typed, name-addressed field
access. The dialect is RFC 4180 with a configurable single-character
delimiter: fields containing the delimiter, a double quote or a line
terminator are quoted, and quotes inside them are doubled.

The package offers two workflows.

1. Streaming

Reader parses one row at a time and Writer serializes rows to any
io.Writer. Nothing beyond the current row is held in memory.

	r, err := csvdoc.NewReaderBuilder().
		Delimiter(';').
		Source(f).
		Build()
	if err != nil {
		// handle error
	}
	for row, err := range r.Entries() {
		if err != nil {
			// a *ParseError or an *IOError
		}
		name, _ := row.Field(0)
		age, err := csvdoc.Field[int](row, 1)
		...
	}

2. Documents

A Document holds a header and all rows. Fields are addressed by column
name and parsed into Go types on access; rows can be filtered, edited and
written back.

	doc, err := csvdoc.ReadFile("students.csv", csvdoc.DefaultReaderConfig())
	if err != nil {
		// handle error
	}
	ages, err := csvdoc.Column[int](doc, "Age")

	err = doc.Retain(func(e csvdoc.DocEntry) (bool, error) {
		school, err := e.Raw("School")
		return school == "Springfield High School", err
	})

	for e := range doc.RowsMut() {
		_ = e.Set("Email", "redacted")
	}

	err = doc.WriteFile("springfield.csv")

Rows can also be decoded into structs, using csv struct tags
(`csv:"name,omitempty"`) or the EntryUnmarshaler interface:

	type Student struct {
		Name string `csv:"Name"`
		Age  int    `csv:"Age"`
	}

	for s, err := range csvdoc.RowsDecoded[Student](doc) {
		...
	}

Views handed out by Rows, RowsMut and Update borrow the document. While
one is live, methods that change the document's shape return
ErrDocumentBusy.

Errors can be matched with errors.Is against the Err* sentinels and
inspected with errors.As through ParseError, WidthError, FieldError and
the other error types.
*/
package csvdoc
