package activity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

type stubStore struct {
	inserted  []*Log
	insertErr error
	listCalls int
}

func (s *stubStore) Insert(ctx context.Context, log *Log) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	log.ID = int64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, log)
	return nil
}

func (s *stubStore) ListLogs(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Log], error) {
	s.listCalls++
	return listing.Page[Log]{Items: []Log{{ID: 1}}, Total: 1}, nil
}

func (s *stubStore) ListInventory(ctx context.Context, filters urlstate.FilterSet) (listing.Page[InventoryEntry], error) {
	s.listCalls++
	return listing.Page[InventoryEntry]{}, nil
}

type stubInvalidator struct {
	bumped []string
	err    error
}

func (s *stubInvalidator) Bump(ctx context.Context, lists ...string) error {
	s.bumped = append(s.bumped, lists...)
	return s.err
}

func TestRecordStoresEntryAndInvalidatesFeed(t *testing.T) {
	store := &stubStore{}
	cache := &stubInvalidator{}
	svc := NewService(store, cache, nil)

	err := svc.Record(context.Background(), Entry{
		UserID:      7,
		Action:      ActionUpdate,
		EntityType:  "product",
		EntityID:    12,
		Description: "Updated product Widget",
		Details:     map[string]any{"price": 9.5},
	})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	log := store.inserted[0]
	require.NotNil(t, log.UserID)
	assert.Equal(t, int64(7), *log.UserID)
	require.NotNil(t, log.EntityID)
	assert.Equal(t, int64(12), *log.EntityID)
	var details map[string]any
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, 9.5, details["price"])
	assert.Equal(t, []string{"activity"}, cache.bumped)
}

func TestInvalidateOnRecordAddsFeeds(t *testing.T) {
	cache := &stubInvalidator{}
	svc := NewService(&stubStore{}, cache, nil)
	svc.InvalidateOnRecord("dashboard")

	require.NoError(t, svc.Record(context.Background(), Entry{Action: ActionDelete}))
	assert.Equal(t, []string{"activity", "dashboard"}, cache.bumped)
}

func TestRecordWithoutUserLeavesIDsEmpty(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil, nil)

	require.NoError(t, svc.Record(context.Background(), Entry{Action: ActionAlert, EntityType: "product", Description: "Low stock"}))
	assert.Nil(t, store.inserted[0].UserID)
	assert.Nil(t, store.inserted[0].EntityID)
	assert.Empty(t, store.inserted[0].Details)
}

func TestRecordFailsWhenInsertFails(t *testing.T) {
	cache := &stubInvalidator{}
	svc := NewService(&stubStore{insertErr: errors.New("db down")}, cache, nil)

	err := svc.Record(context.Background(), Entry{Action: ActionCreate})
	require.Error(t, err)
	assert.Empty(t, cache.bumped)
}

func TestBumpFailureDoesNotFailRecord(t *testing.T) {
	svc := NewService(&stubStore{}, &stubInvalidator{err: errors.New("redis down")}, nil)
	assert.NoError(t, svc.Record(context.Background(), Entry{Action: ActionLogin}))
}

func TestListRejectsInvertedDateRange(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil, nil)
	filters := urlstate.Decode(urlstate.ParseQuery("startDate=2024-03-10&endDate=2024-03-01"), LogSchema)

	_, err := svc.ListLogs(context.Background(), filters)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.ListInventory(context.Background(), urlstate.Decode(urlstate.ParseQuery("startDate=2024-03-10&endDate=2024-03-01"), InventorySchema))
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, store.listCalls)

	page, err := svc.ListLogs(context.Background(), urlstate.Decode(urlstate.ParseQuery("startDate=2024-03-01&endDate=2024-03-01"), LogSchema))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestSchemasDecodeTypeFilter(t *testing.T) {
	logs := urlstate.Decode(urlstate.ParseQuery("type=ALERT"), LogSchema)
	assert.Equal(t, "ALERT", logs.String(TypeKey))

	moves := urlstate.Decode(urlstate.ParseQuery("type=ALERT"), InventorySchema)
	assert.Equal(t, "", moves.String(TypeKey))
	moves = urlstate.Decode(urlstate.ParseQuery("type=RESTOCK"), InventorySchema)
	assert.Equal(t, "RESTOCK", moves.String(TypeKey))
}
