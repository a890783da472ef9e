package persistence

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// CoerceMovieID converts a caller-supplied movie identifier to int64.
// Integer kinds, integral floats, json.Number, decimal.Decimal and decimal
// strings are accepted. Anything else, or a value that is not a positive
// integer, is ErrInvalidInput.
func CoerceMovieID(v any) (int64, error) {
	id, err := coerce(v)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be positive, got %d", domain.ErrInvalidInput, id)
	}
	return id, nil
}

// Bounds on textual identifiers, so exponent notation cannot force huge
// intermediate values.
const (
	maxIDLength       = 64
	maxFractionDigits = 64
)

func coerce(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return fromUint(t)
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case json.Number:
		return fromString(t.String())
	case decimal.Decimal:
		return fromDecimal(t)
	case string:
		return fromString(t)
	default:
		return 0, fmt.Errorf("%w: unsupported movie id type %T", domain.ErrInvalidInput, v)
	}
}

func fromUint(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%w: movie id %d out of range", domain.ErrInvalidInput, u)
	}
	return int64(u), nil
}

func fromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: movie id %v is not an integer", domain.ErrInvalidInput, f)
	}
	return int64(f), nil
}

func fromString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxIDLength {
		return 0, fmt.Errorf("%w: movie id too long", domain.ErrInvalidInput)
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: movie id %q is not a number", domain.ErrInvalidInput, s)
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (int64, error) {
	if exp := d.Exponent(); exp > 18 || exp < -maxFractionDigits {
		return 0, fmt.Errorf("%w: movie id exponent %d out of range", domain.ErrInvalidInput, exp)
	}
	if !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("%w: movie id %s is not an integer", domain.ErrInvalidInput, d.String())
	}
	return d.IntPart(), nil
}
