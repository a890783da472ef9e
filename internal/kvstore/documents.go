package kvstore

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// document is a stored item. Numbers are float64 after decoding.
type document map[string]any

// decodeDocument parses an item, keeping numbers exact until
// normalizeNumbers converts them.
func decodeDocument(data []byte) (document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	normalized, _ := normalizeNumbers(raw).(map[string]any)
	if normalized == nil {
		normalized = map[string]any{}
	}
	return document(normalized), nil
}

func encodeDocument(doc document) ([]byte, error) {
	return json.Marshal(map[string]any(doc))
}

// normalizeNumbers replaces every arbitrary-precision number in v, at any
// depth of nested maps and lists, with its float64 value. Other values are
// returned unchanged.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return t.String()
		}
		return d.InexactFloat64()
	case decimal.Decimal:
		return t.InexactFloat64()
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case document:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	default:
		return v
	}
}

// decimalNumber writes f as an exact decimal literal, so 4.8 is stored as 4.8.
func decimalNumber(f float64) json.Number {
	return json.Number(decimal.NewFromFloat(f).String())
}

func intNumber(n int64) json.Number {
	return json.Number(strconv.FormatInt(n, 10))
}

func (d document) stringField(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d document) floatField(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func (d document) intField(key string) int64 {
	return int64(d.floatField(key))
}

func (d document) timeField(key string) (time.Time, error) {
	raw := d.stringField(key)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", key, err)
	}
	return ts, nil
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
