// Package urlstate converts list filters to and from query strings and lets
// filter controls mutate the current location without clobbering each other.
package urlstate

import (
	"net/url"
	"sort"
	"strings"
)

// Param is one key=value entry of a query string.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered query string with unique keys. Methods never mutate the
// receiver; they return a modified copy.
type Query []Param

// ParseQuery parses a raw query string, with or without the leading "?".
// The first occurrence of a repeated key wins; malformed escapes are skipped.
func ParseQuery(raw string) Query {
	raw = strings.TrimPrefix(raw, "?")
	var q Query
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		if _, exists := q.Get(key); exists {
			continue
		}
		q = append(q, Param{Key: key, Value: value})
	}
	return q
}

// FromValues converts url.Values, keeping the first value of every key in
// sorted key order.
func FromValues(values url.Values) Query {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := make(Query, 0, len(keys))
	for _, k := range keys {
		if len(values[k]) == 0 {
			continue
		}
		q = append(q, Param{Key: k, Value: values[k][0]})
	}
	return q
}

// Get returns the value stored under key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (q Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Set replaces the value of key in place, or appends it when absent.
func (q Query) Set(key, value string) Query {
	out := q.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Key: key, Value: value})
}

// Del removes key, keeping the order of the remaining entries.
func (q Query) Del(key string) Query {
	out := make(Query, 0, len(q))
	for _, p := range q {
		if p.Key != key {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns an independent copy.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}
	out := make(Query, len(q))
	copy(out, q)
	return out
}

// Keys lists the keys in order.
func (q Query) Keys() []string {
	keys := make([]string, len(q))
	for i, p := range q {
		keys[i] = p.Key
	}
	return keys
}

// Values converts the query to url.Values.
func (q Query) Values() url.Values {
	values := make(url.Values, len(q))
	for _, p := range q {
		values.Set(p.Key, p.Value)
	}
	return values
}

// String encodes the query without the leading "?", preserving order.
func (q Query) String() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
