// Package checkpoint persists records.Tables between pipeline stages as
// Parquet files.
//
// Column order and logical types survive a round trip:
//
//	records.KindText  <-> utf8
//	records.KindInt   <-> int64
//	records.KindFloat <-> float64
//	records.KindDate  <-> date32
//
// A column with no values at all is stored as an all-null utf8 column.
// Writes are atomic: the file is built in memory, written to a temporary
// file in the destination directory, synced and renamed into place, so a
// reader never observes a partial checkpoint.
package checkpoint

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"loanetl/pkg/records"
)

const createdBy = "loanetl"

// Write stores t at path, replacing any existing file.
func Write(ctx context.Context, path string, t *records.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(t)
	if err != nil {
		return fmt.Errorf("checkpoint %s: %w", path, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("checkpoint %s: %w", path, err)
	}
	return nil
}

// File pairs a table with the path it is stored at.
type File struct {
	Path  string
	Table *records.Table
}

// WriteAll stores every file or none of them. All tables are encoded before
// the first write; when a write fails, the files already written by this
// call are removed again.
func WriteAll(ctx context.Context, files ...File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := make([][]byte, len(files))
	for i, f := range files {
		b, err := Encode(f.Table)
		if err != nil {
			return fmt.Errorf("checkpoint %s: %w", f.Path, err)
		}
		data[i] = b
	}
	for i, f := range files {
		if err := writeAtomic(f.Path, data[i]); err != nil {
			for _, done := range files[:i] {
				_ = os.Remove(done.Path)
			}
			return fmt.Errorf("checkpoint %s: %w", f.Path, err)
		}
	}
	return nil
}

// Read loads the table stored at path.
func Read(ctx context.Context, path string) (*records.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	t, err := Decode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	return t, nil
}

// Encode renders t as a Parquet file.
func Encode(t *records.Table) ([]byte, error) {
	pool := memory.NewGoAllocator()

	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		k, err := t.KindOf(c)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: c, Type: arrowType(k), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for i, c := range t.Columns {
		if err := appendColumn(b.Field(i), c, t.Rows); err != nil {
			return nil, err
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithDictionaryDefault(true),
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy(createdBy),
	)
	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(schema, &buf, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return nil, fmt.Errorf("write parquet record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a Parquet file produced by Encode.
func Decode(ctx context.Context, data []byte) (*records.Table, error) {
	pool := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, bytes.NewReader(data), parquet.NewReaderProperties(pool), pqarrow.ArrowReadProperties{}, pool)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	n := int(tbl.NumRows())
	cols := make([]string, tbl.NumCols())
	for i := range cols {
		cols[i] = tbl.Schema().Field(i).Name
	}
	out := records.NewTable(cols...)
	out.Rows = make([]records.Record, n)
	for i := range out.Rows {
		out.Rows[i] = make(records.Record, len(cols))
	}

	for i, name := range cols {
		row := 0
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				v, err := cell(chunk, j)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", name, err)
				}
				out.Rows[row][name] = v
				row++
			}
		}
	}
	return out, nil
}

func arrowType(k records.Kind) arrow.DataType {
	switch k {
	case records.KindInt:
		return arrow.PrimitiveTypes.Int64
	case records.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case records.KindDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

func appendColumn(b array.Builder, col string, rows []records.Record) error {
	for i, r := range rows {
		v := r[col]
		if v == nil {
			b.AppendNull()
			continue
		}
		switch fb := b.(type) {
		case *array.StringBuilder:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("column %q row %d: %T in text column", col, i, v)
			}
			fb.Append(s)
		case *array.Int64Builder:
			switch x := v.(type) {
			case int64:
				fb.Append(x)
			case int:
				fb.Append(int64(x))
			default:
				return fmt.Errorf("column %q row %d: %T in int column", col, i, v)
			}
		case *array.Float64Builder:
			f, ok := records.AsFloat(v)
			if !ok {
				return fmt.Errorf("column %q row %d: %T in float column", col, i, v)
			}
			fb.Append(f)
		case *array.Date32Builder:
			d, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("column %q row %d: %T in date column", col, i, v)
			}
			fb.Append(arrow.Date32FromTime(records.Date(d)))
		default:
			return fmt.Errorf("column %q: unsupported builder %T", col, b)
		}
	}
	return nil
}

func cell(a arrow.Array, i int) (any, error) {
	if a.IsNull(i) {
		return nil, nil
	}
	switch x := a.(type) {
	case *array.String:
		return x.Value(i), nil
	case *array.LargeString:
		return x.Value(i), nil
	case *array.Int64:
		return x.Value(i), nil
	case *array.Int32:
		return int64(x.Value(i)), nil
	case *array.Float64:
		return x.Value(i), nil
	case *array.Date32:
		return records.Date(x.Value(i).ToTime()), nil
	case *array.Null:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported arrow type %s", a.DataType())
}

// writeAtomic writes data to a sibling temp file, syncs it and renames it
// over path.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
