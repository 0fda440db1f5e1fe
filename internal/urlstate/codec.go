package urlstate

import (
	"net/url"
	"reflect"
	"time"
)

// FilterSet is the fully defaulted, typed form of a list page's filters.
// Values are string (string, enum and date dimensions), bool or int.
type FilterSet map[string]any

// String returns a string-typed value or "".
func (f FilterSet) String(key string) string {
	v, _ := f[key].(string)
	return v
}

// Bool returns a bool-typed value or false.
func (f FilterSet) Bool(key string) bool {
	v, _ := f[key].(bool)
	return v
}

// Int returns an int-typed value or 0.
func (f FilterSet) Int(key string) int {
	v, _ := f[key].(int)
	return v
}

// Date parses a date dimension. ok is false when the dimension is unset.
func (f FilterSet) Date(key string) (time.Time, bool) {
	raw := f.String(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clone returns a shallow copy.
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Decode reads every schema dimension from raw. Missing or unparsable values
// fall back to the dimension default; Decode never fails.
func Decode(raw Query, schema Schema) FilterSet {
	out := make(FilterSet, len(schema.Dimensions))
	for _, dim := range schema.Dimensions {
		value, ok := raw.Get(dim.Key)
		if !ok {
			out[dim.Key] = dim.Default
			continue
		}
		out[dim.Key] = dim.parse(value)
	}
	return out
}

// Encode writes filters in schema order. Values are coerced to their
// declared type first; the schema policy alone decides whether default-valued
// dimensions are written.
func Encode(filters FilterSet, schema Schema) Query {
	q := make(Query, 0, len(schema.Dimensions))
	for _, dim := range schema.Dimensions {
		value := dim.coerce(filters[dim.Key])
		if schema.Policy == OmitDefaults && value == dim.Default {
			continue
		}
		q = append(q, Param{Key: dim.Key, Value: dim.format(value)})
	}
	return q
}

// Normalize coerces every dimension of filters, filling defaults.
func Normalize(filters FilterSet, schema Schema) FilterSet {
	out := make(FilterSet, len(schema.Dimensions))
	for _, dim := range schema.Dimensions {
		out[dim.Key] = dim.coerce(filters[dim.Key])
	}
	return out
}

// Key is the canonical, order-insensitive form of filters: every dimension,
// defaults included, sorted by key.
func Key(filters FilterSet, schema Schema) string {
	values := make(url.Values, len(schema.Dimensions))
	for _, dim := range schema.Dimensions {
		values.Set(dim.Key, dim.format(dim.coerce(filters[dim.Key])))
	}
	return values.Encode()
}

// Equal reports structural equality of two filter sets.
func Equal(a, b FilterSet) bool {
	if len(a) != len(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}
