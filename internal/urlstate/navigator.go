package urlstate

import (
	"net/url"
	"slices"
	"sync"
)

// Navigation records one navigation performed on a MemoryNavigator.
type Navigation struct {
	Query   Query
	Options NavigateOptions
}

// MemoryNavigator keeps the location in process.
type MemoryNavigator struct {
	mu        sync.Mutex
	current   Query
	history   []Navigation
	listeners []func(Query)
}

// NewMemoryNavigator starts at initial.
func NewMemoryNavigator(initial Query) *MemoryNavigator {
	return &MemoryNavigator{current: initial.Clone()}
}

// Location returns a copy of the current query.
func (n *MemoryNavigator) Location() Query {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.Clone()
}

// Navigate replaces the current query.
func (n *MemoryNavigator) Navigate(q Query, opts NavigateOptions) {
	n.Update(func(Query) Query { return q }, opts)
}

// Update runs fn against the current query under the lock and navigates to
// its result.
func (n *MemoryNavigator) Update(fn func(Query) Query, opts NavigateOptions) {
	n.mu.Lock()
	next := fn(n.current.Clone()).Clone()
	n.current = next
	n.history = append(n.history, Navigation{Query: next.Clone(), Options: opts})
	listeners := slices.Clone(n.listeners)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(next.Clone())
	}
}

// Subscribe registers fn to run after every navigation.
func (n *MemoryNavigator) Subscribe(fn func(Query)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// History returns the navigations performed so far.
func (n *MemoryNavigator) History() []Navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Navigation(nil), n.history...)
}

// URLNavigator applies navigations to a URL, for computing the next href of
// a page on the server.
type URLNavigator struct {
	mu   sync.Mutex
	u    url.URL
	last NavigateOptions
}

// NewURLNavigator parses href.
func NewURLNavigator(href string) (*URLNavigator, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return &URLNavigator{u: *u, last: NavigateOptions{Scroll: true}}, nil
}

// Location returns the URL's query.
func (n *URLNavigator) Location() Query {
	n.mu.Lock()
	defer n.mu.Unlock()
	return ParseQuery(n.u.RawQuery)
}

// Navigate rewrites the URL's query.
func (n *URLNavigator) Navigate(q Query, opts NavigateOptions) {
	n.Update(func(Query) Query { return q }, opts)
}

// Update runs a read-merge-write on the URL's query.
func (n *URLNavigator) Update(fn func(Query) Query, opts NavigateOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.u.RawQuery = fn(ParseQuery(n.u.RawQuery)).String()
	n.last = opts
}

// Href returns the current URL.
func (n *URLNavigator) Href() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.u.String()
}

// LastOptions returns the options of the most recent navigation.
func (n *URLNavigator) LastOptions() NavigateOptions {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
