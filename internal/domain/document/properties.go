package document

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/xdev-exe/cortyx/internal/domain"
)

// Prepared is caller data made ready for storage.
type Prepared struct {
	// Name is the caller-supplied identifier, or "" when one must be generated.
	Name  string
	Props map[string]any
}

// PrepareCreate validates data for a new document and splits off its name.
// Store-maintained timestamps are dropped. Null values are dropped, since a
// new node has nothing to unset.
func PrepareCreate(data map[string]any) (Prepared, error) {
	props, err := cleanProperties(data)
	if err != nil {
		return Prepared{}, err
	}

	var name string
	if raw, ok := props[KeyName]; ok {
		delete(props, KeyName)
		switch v := raw.(type) {
		case nil:
		case string:
			name = strings.TrimSpace(v)
		case int64:
			name = strconv.FormatInt(v, 10)
		case float64:
			name = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return Prepared{}, fmt.Errorf("%w: name must be a string or a number", domain.ErrInvalidDocument)
		}
	}
	for k, v := range props {
		if v == nil {
			delete(props, k)
		}
	}
	return Prepared{Name: name, Props: props}, nil
}

// PreparePatch validates partial update data. The name and the timestamps
// are removed so a merge can never change them; null values are kept so
// the merge removes those properties.
func PreparePatch(data map[string]any) (map[string]any, error) {
	props, err := cleanProperties(data)
	if err != nil {
		return nil, err
	}
	delete(props, KeyName)
	return props, nil
}

// cleanProperties checks that every value is one the store can hold as a
// property: a scalar or a list of scalars of one kind. json.Number becomes
// int64 or float64. Maps are rejected since properties cannot nest.
func cleanProperties(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if k == "" {
			return nil, fmt.Errorf("%w: empty property key", domain.ErrInvalidDocument)
		}
		if k == KeyCreation || k == KeyModified {
			continue
		}
		cv, err := property(v)
		if err != nil {
			return nil, fmt.Errorf("%w: property %q: %w", domain.ErrInvalidDocument, k, err)
		}
		out[k] = cv
	}
	return out, nil
}

func property(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.(type) {
	case string, []byte, json.Number:
		return scalar(v)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return list(items)
	}
	return scalar(v)
}

// list converts items to a homogeneous typed slice. Integers mixed with
// floats are widened to float64.
func list(items []any) (any, error) {
	var (
		strs   []string
		bools  []bool
		ints   []int64
		floats []float64
		kinds  int
	)
	for i, it := range items {
		v, err := scalar(it)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		switch val := v.(type) {
		case nil:
			return nil, fmt.Errorf("element %d: null inside a list", i)
		case string:
			strs = append(strs, val)
		case bool:
			bools = append(bools, val)
		case int64:
			ints = append(ints, val)
			floats = append(floats, float64(val))
		case float64:
			floats = append(floats, val)
		}
	}
	if len(strs) > 0 {
		kinds++
	}
	if len(bools) > 0 {
		kinds++
	}
	if len(floats) > 0 {
		kinds++
	}
	switch {
	case kinds > 1:
		return nil, fmt.Errorf("list mixes value types")
	case len(strs) > 0:
		return strs, nil
	case len(bools) > 0:
		return bools, nil
	case len(ints) == len(items) && len(ints) > 0:
		return ints, nil
	case len(floats) > 0:
		return floats, nil
	default:
		return []string{}, nil
	}
}

func scalar(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float32:
		return scalar(float64(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite number")
		}
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return scalar(f)
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}
