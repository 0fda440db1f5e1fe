package customers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

type stubRepo struct {
	rows    map[int64]Customer
	filters urlstate.FilterSet
}

func (s *stubRepo) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[CustomerRow], error) {
	s.filters = filters
	var out []CustomerRow
	for _, c := range s.rows {
		if filters.String(TypeKey) == "" || string(c.Type) == filters.String(TypeKey) {
			out = append(out, CustomerRow{Customer: c})
		}
	}
	return listing.Page[CustomerRow]{Items: out, Total: len(out)}, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Customer, error) {
	c, ok := s.rows[id]
	if !ok {
		return Customer{}, httpx.ErrNotFound
	}
	return c, nil
}

func (s *stubRepo) Create(ctx context.Context, c *Customer) error {
	c.ID = int64(len(s.rows) + 1)
	s.rows[c.ID] = *c
	return nil
}

func (s *stubRepo) Update(ctx context.Context, c *Customer) error {
	s.rows[c.ID] = *c
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	delete(s.rows, id)
	return nil
}

type stubActivity struct {
	entries     []activity.Entry
	invalidated []string
}

func (s *stubActivity) Record(ctx context.Context, entry activity.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubActivity) Invalidate(ctx context.Context, lists ...string) {
	s.invalidated = append(s.invalidated, lists...)
}

func TestCreateNormalisesAndRecords(t *testing.T) {
	repo := &stubRepo{rows: map[int64]Customer{}}
	act := &stubActivity{}
	svc := NewService(repo, act, nil)

	c, err := svc.Create(context.Background(), 4, Input{Name: " Acme ", Email: "Sales@Acme.test", Type: "BUSINESS"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "sales@acme.test", c.Email)
	assert.True(t, c.IsActive)
	require.Len(t, act.entries, 1)
	assert.Equal(t, "customer", act.entries[0].EntityType)
	assert.Equal(t, []string{"customers"}, act.invalidated)
}

func TestCreateAndUpdateTrimEmailBeforeValidating(t *testing.T) {
	repo := &stubRepo{rows: map[int64]Customer{}}
	svc := NewService(repo, &stubActivity{}, nil)

	c, err := svc.Create(context.Background(), 1, Input{Name: "Northwind", Email: " Orders@Northwind.Test ", Type: " WHOLESALE "})
	require.NoError(t, err)
	assert.Equal(t, "orders@northwind.test", c.Email)
	assert.Equal(t, TypeWholesale, c.Type)

	c, err = svc.Update(context.Background(), 1, c.ID, Input{Name: "Northwind Ltd", Email: "\tBuying@Northwind.Test\n", Type: "BUSINESS"})
	require.NoError(t, err)
	assert.Equal(t, "buying@northwind.test", c.Email)

	_, err = svc.Create(context.Background(), 1, Input{Name: "   ", Email: "x@example.test", Type: "INDIVIDUAL"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(&stubRepo{rows: map[int64]Customer{}}, &stubActivity{}, nil)
	_, err := svc.Create(context.Background(), 1, Input{Name: "Bob", Email: "bob@example.test", Type: "VIP"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "type must be one of")

	_, err = svc.Create(context.Background(), 1, Input{Name: "Bob", Email: "not-an-email", Type: "INDIVIDUAL"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateMissingCustomer(t *testing.T) {
	svc := NewService(&stubRepo{rows: map[int64]Customer{}}, &stubActivity{}, nil)
	_, err := svc.Update(context.Background(), 1, 42, Input{Name: "X", Email: "x@example.test", Type: "INDIVIDUAL"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestSchemaWritesEveryFilter(t *testing.T) {
	filters := urlstate.Decode(urlstate.ParseQuery("type=WHOLESALE"), Schema)
	assert.Equal(t, "search=&type=WHOLESALE&isActive=true&page=1", urlstate.Encode(filters, Schema).String())
}

func TestListEndpointFiltersByType(t *testing.T) {
	repo := &stubRepo{rows: map[int64]Customer{
		1: {ID: 1, Name: "Ann", Type: TypeIndividual, IsActive: true},
		2: {ID: 2, Name: "Bulk Co", Type: TypeWholesale, IsActive: true},
	}}
	r := chi.NewRouter()
	NewHandler(NewService(repo, &stubActivity{}, nil), nil, nil, 1).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers?type=WHOLESALE&isActive=yes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Bulk Co"))
	assert.False(t, strings.Contains(rec.Body.String(), "Ann"))
	assert.True(t, repo.filters.Bool(IsActiveKey))
}
