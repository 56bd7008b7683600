// Package arrowconv converts Documents to and from Apache Arrow records.
//
// Conversion to Arrow needs a caller-supplied schema: every schema field
// names a document column and fixes the Arrow type the column's text is
// parsed into. Nothing is inferred.
package arrowconv

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	csvdoc "github.com/KimNorgaard/go-csvdoc"
)

// Supported reports whether columns of type dt can be converted.
func Supported(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.STRING, arrow.INT64, arrow.INT32, arrow.FLOAT64, arrow.FLOAT32, arrow.BOOL:
		return true
	}
	return false
}

func unsupported(name string, dt arrow.DataType) error {
	return fmt.Errorf("arrowconv: column %q: %w: unsupported arrow type %s", name, csvdoc.ErrTypeConversion, dt)
}

// ToRecord builds a record holding the columns schema names, in schema
// order, with one record row per document row. A schema field naming no
// column fails with csvdoc.ErrUnknownColumn. In a nullable non-string
// field an empty value becomes null; otherwise text that does not parse
// as the field's type fails with a *csvdoc.FieldError. A nil mem uses
// memory.DefaultAllocator. The caller must Release the record.
func ToRecord(d *csvdoc.Document, schema *arrow.Schema, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	fields := schema.Fields()
	for _, f := range fields {
		if _, err := d.ColumnIndex(f.Name); err != nil {
			return nil, err
		}
		if !Supported(f.Type) {
			return nil, unsupported(f.Name, f.Type)
		}
	}

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for e := range d.Rows() {
		for i, f := range fields {
			if err := appendField(b.Field(i), e, f); err != nil {
				return nil, err
			}
		}
	}
	return b.NewRecord(), nil
}

func appendField(fb array.Builder, e csvdoc.DocEntry, f arrow.Field) error {
	raw, err := e.Raw(f.Name)
	if err != nil {
		return err
	}
	if raw == "" && f.Nullable && f.Type.ID() != arrow.STRING {
		fb.AppendNull()
		return nil
	}

	switch fb := fb.(type) {
	case *array.StringBuilder:
		fb.Append(raw)
	case *array.Int64Builder:
		v, err := csvdoc.Lookup[int64](e, f.Name)
		if err != nil {
			return err
		}
		fb.Append(v)
	case *array.Int32Builder:
		v, err := csvdoc.Lookup[int32](e, f.Name)
		if err != nil {
			return err
		}
		fb.Append(v)
	case *array.Float64Builder:
		v, err := csvdoc.Lookup[float64](e, f.Name)
		if err != nil {
			return err
		}
		fb.Append(v)
	case *array.Float32Builder:
		v, err := csvdoc.Lookup[float32](e, f.Name)
		if err != nil {
			return err
		}
		fb.Append(v)
	case *array.BooleanBuilder:
		v, err := csvdoc.Lookup[bool](e, f.Name)
		if err != nil {
			return err
		}
		fb.Append(v)
	default:
		return unsupported(f.Name, f.Type)
	}
	return nil
}

// FromRecord copies rec into a new Document whose header is the record's
// field names. Values are written in the text form csvdoc.NewRow uses and
// nulls become empty fields.
func FromRecord(rec arrow.Record) (*csvdoc.Document, error) {
	schema := rec.Schema()
	names := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		if !Supported(f.Type) {
			return nil, unsupported(f.Name, f.Type)
		}
		names[i] = f.Name
	}
	d, err := csvdoc.WithHeaders(names...)
	if err != nil {
		return nil, err
	}

	rows := make([]csvdoc.Row, rec.NumRows())
	values := make([]any, len(names))
	for i := range rows {
		for j := range names {
			values[j] = value(rec.Column(j), i)
		}
		rows[i] = csvdoc.NewRow(values...)
	}
	if err := d.InsertAll(rows...); err != nil {
		return nil, err
	}
	return d, nil
}

func value(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch a := col.(type) {
	case *array.String:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	}
	return col.ValueStr(i)
}
