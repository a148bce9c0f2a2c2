package serializer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NewDumpSerializer creates a dump serializer by format name (json, toml, yaml)
func NewDumpSerializer(format string) (IDumpSerializer, error) {
	switch format {
	case "json":
		return NewJSONSerializer(), nil
	case "toml":
		return NewTOMLSerializer(), nil
	case "yaml", "yml":
		return NewYAMLSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid dump format %s (expected json, toml or yaml)", format)
	}
}

// --------------------------------------------------------------------------
// Document model shared by all dump formats
// --------------------------------------------------------------------------

// dumpEntry is one key of a dump. Floats that have no literal in every format
// (NaN, +Inf, -Inf) are written as strings.
type dumpEntry struct {
	Type  string `json:"type" toml:"type" yaml:"type"`
	Value any    `json:"value" toml:"value" yaml:"value"`
}

func toDocument(entries map[string]Value) (map[string]dumpEntry, error) {
	doc := make(map[string]dumpEntry, len(entries))
	for key, v := range entries {
		var raw any
		switch v.kind {
		case KindInt:
			i, _ := v.AsInt()
			raw = int64(i)
		case KindLong:
			raw, _ = v.AsLong()
		case KindFloat:
			f, _ := v.AsFloat()
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				raw = strconv.FormatFloat(float64(f), 'g', -1, 32)
			} else {
				raw = float64(f)
			}
		case KindBool:
			raw, _ = v.AsBool()
		case KindString:
			raw = v.str
		default:
			return nil, fmt.Errorf("key %q: cannot dump value of kind %s", key, v.kind)
		}
		doc[key] = dumpEntry{Type: v.kind.String(), Value: raw}
	}
	return doc, nil
}

func fromDocument(doc map[string]dumpEntry) (map[string]Value, error) {
	entries := make(map[string]Value, len(doc))
	for key, e := range doc {
		kind, err := ParseKind(e.Type)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		v, err := valueFromRaw(kind, e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		entries[key] = v
	}
	return entries, nil
}

func valueFromRaw(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindInt:
		n, err := toInt64(raw)
		if err != nil {
			return Value{}, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, fmt.Errorf("value %d out of int range", n)
		}
		return Int(int32(n)), nil
	case KindLong:
		n, err := toInt64(raw)
		if err != nil {
			return Value{}, err
		}
		return Long(n), nil
	case KindFloat:
		f, err := toFloat64(raw)
		if err != nil {
			return Value{}, err
		}
		return Float(float32(f)), nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("expected boolean, got %T", raw)
		}
		return Bool(b), nil
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected string, got %T", raw)
		}
		return String(s), nil
	default:
		return Value{}, fmt.Errorf("unsupported kind %s", kind)
	}
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of long range", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("value %v is not an integer", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func toFloat64(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("expected float, got %T", raw)
	}
}
