package graph

import (
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Normalize converts a value returned by the store into plain Go values.
//
// Boxed wide integers of the shape {low, high} collapse to int64, temporal
// values become strings, nodes and relationships become their property maps.
// Maps and slices are walked recursively; anything else is returned as is.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if n, ok := wideInt(val); ok {
			return n
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case dbtype.Node:
		return Normalize(val.Props)
	case *dbtype.Node:
		return Normalize(val.Props)
	case dbtype.Relationship:
		return Normalize(val.Props)
	case *dbtype.Relationship:
		return Normalize(val.Props)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case dbtype.Date:
		return time.Time(val).Format("2006-01-02")
	case dbtype.LocalDateTime:
		return time.Time(val).Format("2006-01-02T15:04:05.999999999")
	case dbtype.LocalTime:
		return time.Time(val).Format("15:04:05.999999999")
	case dbtype.Time:
		return time.Time(val).Format("15:04:05.999999999Z07:00")
	case dbtype.Duration:
		return val.String()
	default:
		return v
	}
}

// NormalizeRecord applies Normalize to every value of a record in place.
func NormalizeRecord(r Record) Record {
	for k, v := range r {
		r[k] = Normalize(v)
	}
	return r
}

// wideInt reports whether m has exactly the keys low and high, both integral,
// and returns the combined value.
func wideInt(m map[string]any) (int64, bool) {
	if len(m) != 2 {
		return 0, false
	}
	low, ok := integral(m["low"])
	if !ok {
		return 0, false
	}
	high, ok := integral(m["high"])
	if !ok {
		return 0, false
	}
	return high<<32 | int64(uint32(low)), true
}

func integral(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
