package urlstate

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainNavigator implements only Navigator, forcing the non-atomic path.
type plainNavigator struct {
	current Query
	calls   []NavigateOptions
}

func (n *plainNavigator) Location() Query { return n.current.Clone() }

func (n *plainNavigator) Navigate(q Query, opts NavigateOptions) {
	n.current = q
	n.calls = append(n.calls, opts)
}

func TestClearRemovesOnlyItsKey(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("search=wid&status=PAID&inStock=true"))
	status := NewControl(nav, Enum("status", "", "PENDING", "PAID"))

	status.Clear()

	assert.Equal(t, "search=wid&inStock=true", nav.Location().String())
}

func TestSiblingControlsDoNotLoseUpdates(t *testing.T) {
	for name, nav := range map[string]Navigator{
		"memory": NewMemoryNavigator(ParseQuery("isActive=false")),
		"plain":  &plainNavigator{current: ParseQuery("isActive=false")},
	} {
		t.Run(name, func(t *testing.T) {
			search := NewControl(nav, String("search", ""))
			stock := NewControl(nav, Bool("inStock", false))

			require.NoError(t, search.SetValue("widget"))
			require.NoError(t, stock.SetValue("true"))

			assert.Equal(t, "isActive=false&search=widget&inStock=true", nav.Location().String())
		})
	}
}

func TestConcurrentSetValueKeepsEveryKey(t *testing.T) {
	nav := NewMemoryNavigator(nil)
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_ = NewControl(nav, String(k, "")).SetValue("x")
		}(k)
	}
	wg.Wait()

	loc := nav.Location()
	for _, k := range keys {
		assert.True(t, loc.Has(k), k)
	}
}

func TestNavigationPreservesScroll(t *testing.T) {
	nav := NewMemoryNavigator(nil)
	c := NewControl(nav, String("search", ""))
	require.NoError(t, c.SetValue("bolt"))
	c.Clear()

	history := nav.History()
	require.Len(t, history, 2)
	for _, h := range history {
		assert.False(t, h.Options.Scroll)
		assert.True(t, h.Options.Replace)
	}
}

func TestAllSentinelClearsInsteadOfWriting(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("type=BUSINESS&search=acme"))
	c := NewControl(nav, Enum("type", "", "INDIVIDUAL", "BUSINESS"), WithAllValue("all"))

	assert.Equal(t, "BUSINESS", c.Value())
	require.NoError(t, c.SetValue("all"))
	assert.Equal(t, "search=acme", nav.Location().String())
	assert.Equal(t, "all", c.Value())
}

func TestEmptyValueClears(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("search=acme&page=2"))
	c := NewControl(nav, String("search", ""))
	require.NoError(t, c.SetValue(""))
	assert.Equal(t, "page=2", nav.Location().String())
}

func TestEnumRejectsUnknownValue(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("status=PAID"))
	c := NewControl(nav, Enum("status", "", "PENDING", "PAID"))

	err := c.SetValue("SHIPPED")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValueNotAllowed))
	assert.Equal(t, "status=PAID", nav.Location().String())
	assert.Empty(t, nav.History())
}

func TestResetKeysDropPageOnChange(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("search=a&page=4"))
	c := NewControl(nav, String("search", ""), WithResetKeys("page"))

	require.NoError(t, c.SetValue("a"))
	assert.Equal(t, "search=a&page=4", nav.Location().String(), "same value keeps the page")

	require.NoError(t, c.SetValue("b"))
	assert.Equal(t, "search=b", nav.Location().String())
}

func TestClearKeepsResetKeys(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("search=wid&status=PAID&page=3"))
	status := NewControl(nav, Enum("status", "", "PENDING", "PAID"), WithAllValue("all"), WithResetKeys("page"))

	status.Clear()
	assert.Equal(t, "search=wid&page=3", nav.Location().String())

	status.Clear()
	assert.Equal(t, "search=wid&page=3", nav.Location().String())
}

func TestAllSentinelResetsPage(t *testing.T) {
	nav := NewMemoryNavigator(ParseQuery("search=wid&status=PAID&page=3"))
	status := NewControl(nav, Enum("status", "", "PENDING", "PAID"), WithAllValue("all"), WithResetKeys("page"))

	require.NoError(t, status.SetValue("all"))
	assert.Equal(t, "search=wid", nav.Location().String())
}

func TestURLNavigatorRewritesHref(t *testing.T) {
	nav, err := NewURLNavigator("/orders?status=PENDING&search=x#top")
	require.NoError(t, err)

	require.NoError(t, NewControl(nav, Enum("paymentStatus", "", "PAID")).SetValue("PAID"))
	NewControl(nav, String("search", "")).Clear()

	assert.Equal(t, "/orders?status=PENDING&paymentStatus=PAID#top", nav.Href())
	assert.False(t, nav.LastOptions().Scroll)
}

func TestSubscribeSeesEveryNavigation(t *testing.T) {
	nav := NewMemoryNavigator(nil)
	var seen []string
	nav.Subscribe(func(q Query) { seen = append(seen, q.String()) })

	c := NewControl(nav, String("search", ""))
	require.NoError(t, c.SetValue("w"))
	require.NoError(t, c.SetValue("wi"))

	assert.Equal(t, []string{"search=w", "search=wi"}, seen)
}
