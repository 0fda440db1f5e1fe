package urlstate

import (
	"errors"
	"fmt"
	"slices"
)

// ErrValueNotAllowed is returned when an enumerated control receives a value
// outside its allowed set.
var ErrValueNotAllowed = errors.New("urlstate: value not allowed")

// NavigateOptions tune a navigation.
type NavigateOptions struct {
	// Scroll resets the scroll position to the top when true.
	Scroll bool
	// Replace replaces the current history entry instead of pushing one.
	Replace bool
}

// filterNavigation keeps the scroll position and does not grow history.
var filterNavigation = NavigateOptions{Scroll: false, Replace: true}

// Navigator exposes the ambient location. Location must return the current
// query at call time; Navigate is fire-and-forget.
type Navigator interface {
	Location() Query
	Navigate(q Query, opts NavigateOptions)
}

// Updater is implemented by navigators able to run a read-merge-write as one
// atomic step.
type Updater interface {
	Update(fn func(Query) Query, opts NavigateOptions)
}

// Control is bound to one dimension of a list page.
type Control struct {
	nav       Navigator
	key       string
	allowed   []string
	allValue  string
	resetKeys []string
}

// ControlOption configures a Control.
type ControlOption func(*Control)

// WithAllValue sets the sentinel that clears the dimension when selected.
func WithAllValue(v string) ControlOption {
	return func(c *Control) {
		c.allValue = v
	}
}

// WithAllowed restricts the values the control accepts.
func WithAllowed(values ...string) ControlOption {
	return func(c *Control) {
		c.allowed = values
	}
}

// WithResetKeys names keys dropped whenever this control changes value,
// typically the page number.
func WithResetKeys(keys ...string) ControlOption {
	return func(c *Control) {
		c.resetKeys = keys
	}
}

// NewControl binds a control to dim. Enumerated dimensions inherit their
// allowed set.
func NewControl(nav Navigator, dim Dimension, opts ...ControlOption) *Control {
	c := &Control{nav: nav, key: dim.Key}
	if dim.Kind == KindEnum {
		c.allowed = dim.Allowed
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the controlled query key.
func (c *Control) Key() string {
	return c.key
}

// Value returns the raw value in the current location, or the all sentinel
// when the key is absent.
func (c *Control) Value() string {
	if v, ok := c.nav.Location().Get(c.key); ok {
		return v
	}
	return c.allValue
}

// SetValue merges key=v into the current location. The sentinel and the
// empty string remove the key instead. Reset keys are dropped whenever the
// value changes.
func (c *Control) SetValue(v string) error {
	if v == "" || (c.allValue != "" && v == c.allValue) {
		c.apply(func(current Query) Query {
			if !current.Has(c.key) {
				return current
			}
			return c.dropReset(current.Del(c.key))
		})
		return nil
	}
	if len(c.allowed) > 0 && !slices.Contains(c.allowed, v) {
		return fmt.Errorf("%w: %s=%q", ErrValueNotAllowed, c.key, v)
	}
	c.apply(func(current Query) Query {
		prev, had := current.Get(c.key)
		next := current.Set(c.key, v)
		if !had || prev != v {
			next = c.dropReset(next)
		}
		return next
	})
	return nil
}

// Clear removes the key from the current location. Every other key,
// reset keys included, is left as it was.
func (c *Control) Clear() {
	c.apply(func(current Query) Query {
		return current.Del(c.key)
	})
}

func (c *Control) apply(fn func(Query) Query) {
	if u, ok := c.nav.(Updater); ok {
		u.Update(fn, filterNavigation)
		return
	}
	c.nav.Navigate(fn(c.nav.Location()), filterNavigation)
}

func (c *Control) dropReset(q Query) Query {
	for _, k := range c.resetKeys {
		if k != c.key {
			q = q.Del(k)
		}
	}
	return q
}
