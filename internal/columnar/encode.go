package columnar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/shopspring/decimal"
)

// Encode writes the transactions as a single snappy-compressed parquet
// file and returns its bytes.
func Encode(txs []models.Transaction) ([]byte, error) {
	rec, err := buildRecord(txs)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	fw, err := pqarrow.NewFileWriter(Schema, &buf, props, arrProps)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return nil, fmt.Errorf("write parquet record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("finalize parquet file: %w", err)
	}
	return buf.Bytes(), nil
}

func buildRecord(txs []models.Transaction) (arrow.Record, error) {
	b := array.NewRecordBuilder(Pool, Schema)
	defer b.Release()

	for _, tx := range txs {
		row := tx.ToRow()
		for i, f := range models.SalesFields {
			if err := appendValue(b.Field(i), f, row[f.Name]); err != nil {
				return nil, fmt.Errorf("%s %s: %w", tx.TransactionID, f.Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(fb array.Builder, f models.FieldConfig, val interface{}) error {
	if val == nil {
		fb.AppendNull()
		return nil
	}
	switch b := fb.(type) {
	case *array.StringBuilder:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		b.Append(s)
	case *array.Int64Builder:
		n, ok := val.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", val)
		}
		b.Append(n)
	case *array.Decimal128Builder:
		d, ok := val.(decimal.Decimal)
		if !ok {
			return fmt.Errorf("expected decimal, got %T", val)
		}
		b.Append(toDecimal128(d, f.Scale))
	case *array.TimestampBuilder:
		t, ok := val.(time.Time)
		if !ok {
			return fmt.Errorf("expected time, got %T", val)
		}
		b.Append(arrow.Timestamp(t.UTC().UnixMicro()))
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}

func toDecimal128(d decimal.Decimal, scale int32) decimal128.Num {
	return decimal128.FromBigInt(d.Shift(scale).Round(0).BigInt())
}
