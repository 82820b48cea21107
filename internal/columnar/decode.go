package columnar

import (
	"bytes"
	"context"
	"fmt"

	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/shopspring/decimal"
)

// Decode reads a parquet file into rows, one map per record, keyed by the
// file's column names. Row order follows the file.
func Decode(ctx context.Context, data []byte) ([]models.Row, error) {
	tbl, err := pqarrow.ReadTable(ctx, bytes.NewReader(data),
		parquet.NewReaderProperties(Pool), pqarrow.ArrowReadProperties{}, Pool)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	rows := make([]models.Row, 0, tbl.NumRows())
	tr := array.NewTableReader(tbl, 0)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		schema := rec.Schema()
		n := int(rec.NumRows())
		start := len(rows)
		for i := 0; i < n; i++ {
			rows = append(rows, make(models.Row, rec.NumCols()))
		}
		for c := 0; c < int(rec.NumCols()); c++ {
			name := schema.Field(c).Name
			col := rec.Column(c)
			for i := 0; i < n; i++ {
				v, err := valueAt(col, i)
				if err != nil {
					return nil, fmt.Errorf("column %s row %d: %w", name, start+i, err)
				}
				rows[start+i][name] = v
			}
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("iterate parquet records: %w", err)
	}
	return rows, nil
}

func valueAt(col arrow.Array, i int) (interface{}, error) {
	if col.IsNull(i) {
		return nil, nil
	}
	switch a := col.(type) {
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return decimal.NewFromBigInt(a.Value(i).BigInt(), -scale), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC(), nil
	default:
		return nil, fmt.Errorf("unsupported arrow type %s", col.DataType())
	}
}
