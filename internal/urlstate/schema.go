package urlstate

import (
	"slices"
	"strconv"
	"time"
)

// DateLayout is the wire format of date dimensions.
const DateLayout = "2006-01-02"

// Kind is the declared type of a dimension.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindEnum
	KindDate
	KindInt
)

// OmitPolicy decides whether default-valued dimensions are written by Encode.
type OmitPolicy int

const (
	// OmitDefaults drops every dimension whose value equals its default.
	OmitDefaults OmitPolicy = iota
	// IncludeAll writes every dimension.
	IncludeAll
)

// Dimension is one independently controlled filter axis.
type Dimension struct {
	Key     string
	Kind    Kind
	Default any
	Allowed []string
	Min     int
	Max     int
}

// String declares a free-text dimension.
func String(key, def string) Dimension {
	return Dimension{Key: key, Kind: KindString, Default: def}
}

// Bool declares a boolean dimension.
func Bool(key string, def bool) Dimension {
	return Dimension{Key: key, Kind: KindBool, Default: def}
}

// Enum declares a dimension restricted to allowed. def does not need to be
// part of allowed; "" is the usual "no filter" default.
func Enum(key, def string, allowed ...string) Dimension {
	return Dimension{Key: key, Kind: KindEnum, Default: def, Allowed: allowed}
}

// Date declares a YYYY-MM-DD dimension with an empty default.
func Date(key string) Dimension {
	return Dimension{Key: key, Kind: KindDate, Default: ""}
}

// Int declares an integer dimension bounded by [min, max]. max <= 0 means
// unbounded above.
func Int(key string, def, min, max int) Dimension {
	return Dimension{Key: key, Kind: KindInt, Default: def, Min: min, Max: max}
}

// parse converts a raw query value. It never fails: anything unparsable
// yields the default.
func (d Dimension) parse(raw string) any {
	switch d.Kind {
	case KindBool:
		// default-false flips only on the exact literal, default-true only
		// on the exact literal "false".
		if def, _ := d.Default.(bool); def {
			return raw != "false"
		}
		return raw == "true"
	case KindEnum:
		if slices.Contains(d.Allowed, raw) {
			return raw
		}
		return d.Default
	case KindDate:
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return d.Default
		}
		return t.Format(DateLayout)
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil || n < d.Min || (d.Max > 0 && n > d.Max) {
			return d.Default
		}
		return n
	default:
		return raw
	}
}

// coerce forces an arbitrary value into the dimension's declared type.
func (d Dimension) coerce(v any) any {
	switch x := v.(type) {
	case nil:
		return d.Default
	case string:
		return d.parse(x)
	case bool:
		if d.Kind == KindBool {
			return x
		}
	case int:
		if d.Kind == KindInt {
			return d.parse(strconv.Itoa(x))
		}
	}
	return d.Default
}

func (d Dimension) format(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return ""
	}
}

// Schema is the fixed set of dimensions of one list page.
type Schema struct {
	Name       string
	Policy     OmitPolicy
	Dimensions []Dimension
}

// NewSchema builds a schema. Dimension keys must be unique.
func NewSchema(name string, policy OmitPolicy, dims ...Dimension) Schema {
	return Schema{Name: name, Policy: policy, Dimensions: dims}
}

// Dimension looks up a dimension by key.
func (s Schema) Dimension(key string) (Dimension, bool) {
	for _, d := range s.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return Dimension{}, false
}

// Defaults returns the fully defaulted FilterSet.
func (s Schema) Defaults() FilterSet {
	out := make(FilterSet, len(s.Dimensions))
	for _, d := range s.Dimensions {
		out[d.Key] = d.Default
	}
	return out
}
