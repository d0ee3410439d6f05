package repositories

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
)

// TimeLayout is the fixed-width UTC layout timestamps are stored in, so that
// lexical order equals chronological order in every adapter.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is a stored document body. Values are strings, int64, float64, bool,
// nested Records, or timestamps (stored as TimeLayout strings).
type Record map[string]any

type serverTimestamp struct{}

// ServerTimestamp, used as a field value, is replaced by the adapter's clock
// when the write is applied.
var ServerTimestamp any = serverTimestamp{}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Normalize deep-copies rec into the canonical stored form: ServerTimestamp
// becomes now, times become TimeLayout strings, integers become int64 and nil
// values are dropped. Unsupported value types fail with ErrInvalidArgument.
func Normalize(rec Record, now time.Time) (Record, error) {
	out := make(Record, len(rec))
	for k, v := range rec {
		if strings.Contains(k, ".") || k == "" {
			return nil, fmt.Errorf("%w: invalid field name %q", domain.ErrInvalidArgument, k)
		}
		nv, keep, err := normalizeValue(v, now)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		if keep {
			out[k] = nv
		}
	}
	return out, nil
}

// NormalizeValue converts a single filter value into its stored form.
func NormalizeValue(v any) (any, error) {
	nv, _, err := normalizeValue(v, time.Time{})
	return nv, err
}

func normalizeValue(v any, now time.Time) (any, bool, error) {
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case serverTimestamp:
		return FormatTime(now), true, nil
	case string, bool, int64, float64:
		return x, true, nil
	case int:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case float32:
		return float64(x), true, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, false, fmt.Errorf("%w: bad number %q", domain.ErrInvalidArgument, x)
		}
		return f, true, nil
	case time.Time:
		return FormatTime(x), true, nil
	case *time.Time:
		if x == nil {
			return nil, false, nil
		}
		return FormatTime(*x), true, nil
	case Record:
		r, err := Normalize(x, now)
		return r, true, err
	case map[string]any:
		r, err := Normalize(Record(x), now)
		return r, true, err
	default:
		return nil, false, fmt.Errorf("%w: unsupported value type %T", domain.ErrInvalidArgument, v)
	}
}

// Clone returns a deep copy of rec.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if nested, ok := v.(Record); ok {
			out[k] = nested.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Lookup resolves a dotted path through nested Records.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		m, ok := asRecord(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at key or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer at key or 0.
func (r Record) Int(key string) int {
	switch x := r[key].(type) {
	case int64:
		return int(x)
	case int:
		return x
	case float64:
		return int(x)
	case json.Number:
		i, _ := x.Int64()
		return int(i)
	}
	return 0
}

// Float returns the number at key or 0.
func (r Record) Float(key string) float64 {
	switch x := r[key].(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	}
	return 0
}

// Bool returns the boolean at key or false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Time returns the timestamp at key, or the zero time if absent or malformed.
func (r Record) Time(key string) time.Time {
	if t := r.TimePtr(key); t != nil {
		return *t
	}
	return time.Time{}
}

// TimePtr returns the timestamp at key, or nil if absent or malformed.
func (r Record) TimePtr(key string) *time.Time {
	switch x := r[key].(type) {
	case time.Time:
		t := x.UTC()
		return &t
	case string:
		for _, layout := range []string{TimeLayout, time.RFC3339Nano} {
			if t, err := time.Parse(layout, x); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// Map returns the nested record at key, or an empty Record.
func (r Record) Map(key string) Record {
	if m, ok := asRecord(r[key]); ok {
		return m
	}
	return Record{}
}

func asRecord(v any) (Record, bool) {
	switch x := v.(type) {
	case Record:
		return x, true
	case map[string]any:
		return Record(x), true
	}
	return nil, false
}

// CompareValues orders two normalized scalar values: booleans before numbers
// before strings, each compared naturally. Mixed kinds compare by kind rank.
func CompareValues(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case string:
		return strings.Compare(x, b.(string))
	}
	fa, fb := toFloat(a), toFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

// EqualValues reports whether two normalized values are equal.
func EqualValues(a, b any) bool {
	if kindRank(a) != kindRank(b) {
		return false
	}
	if kindRank(a) == rankOther {
		return false
	}
	return CompareValues(a, b) == 0
}

const (
	rankBool = iota
	rankNumber
	rankString
	rankOther
)

func kindRank(v any) int {
	switch v.(type) {
	case bool:
		return rankBool
	case int64, int, float64:
		return rankNumber
	case string:
		return rankString
	}
	return rankOther
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
