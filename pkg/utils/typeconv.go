package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/shopspring/decimal"
)

// ConvertToSQLType normalizes a decoded value into the Go type the SQL
// driver expects for the column.
func ConvertToSQLType(val interface{}, cfg models.FieldConfig) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch cfg.Type {
	case models.TypeDatetime:
		return ConvertDateTime(val)
	case models.TypeInt:
		return ConvertToInt(val)
	case models.TypeDecimal:
		d, err := ConvertToDecimal(val)
		if err != nil {
			return nil, err
		}
		if cfg.Scale > 0 {
			d = d.Round(cfg.Scale)
		}
		return d, nil
	case models.TypeString:
		return ConvertToString(val), nil
	default:
		return val, nil
	}
}

func ConvertDateTime(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, f := range formats {
			if t, err := time.Parse(f, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse datetime: %s", v)
	case []byte:
		return ConvertDateTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to datetime", val)
	}
}

func ConvertToInt(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
}

func ConvertToDecimal(val interface{}) (decimal.Decimal, error) {
	switch v := val.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		return decimal.NewFromString(v)
	case []byte:
		return decimal.NewFromString(string(v))
	default:
		return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", val)
	}
}

func ConvertToString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
