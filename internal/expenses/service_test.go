package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

type stubRepo struct {
	saved     []Expense
	listCalls int
}

func (s *stubRepo) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Expense], error) {
	s.listCalls++
	return listing.Page[Expense]{Items: s.saved, Total: len(s.saved)}, nil
}

func (s *stubRepo) Summarize(ctx context.Context, filters urlstate.FilterSet) (Summary, error) {
	var out Summary
	for _, e := range s.saved {
		if c := filters.String(CategoryKey); c == "" || string(e.Category) == c {
			out.Count++
			out.Total += e.Amount
		}
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Expense, error) {
	for _, e := range s.saved {
		if e.ID == id {
			return e, nil
		}
	}
	return Expense{}, httpx.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, e *Expense) error {
	e.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, *e)
	return nil
}

func (s *stubRepo) Update(ctx context.Context, e *Expense) error { return nil }

func (s *stubRepo) Delete(ctx context.Context, id int64) error { return nil }

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

func TestCreateParsesSpentDate(t *testing.T) {
	repo := &stubRepo{}
	act := &stubActivity{}
	svc := NewService(repo, act, nil)

	e, err := svc.Create(context.Background(), 1, Input{Description: " March rent ", Category: "RENT", Amount: 1500, SpentAt: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "March rent", e.Description)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), e.SpentAt)
	assert.Equal(t, []string{"expenses"}, act.invalidated)
	require.Len(t, act.entries, 1)
	assert.Equal(t, `create expense "March rent"`, act.entries[0].Description)
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubActivity{}, nil)
	cases := []Input{
		{Description: "x", Category: "TRAVEL", Amount: 1, SpentAt: "2024-03-01"},
		{Description: "x", Category: "RENT", Amount: 0, SpentAt: "2024-03-01"},
		{Description: "x", Category: "RENT", Amount: 1, SpentAt: "03/01/2024"},
		{Category: "RENT", Amount: 1, SpentAt: "2024-03-01"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), 1, in)
		assert.ErrorIs(t, err, httpx.ErrValidation, "%+v", in)
	}
}

func TestSummarizeByCategory(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubActivity{}, nil)
	for _, in := range []Input{
		{Description: "rent", Category: "RENT", Amount: 1000, SpentAt: "2024-01-01"},
		{Description: "power", Category: "UTILITIES", Amount: 120.5, SpentAt: "2024-01-03"},
		{Description: "water", Category: "UTILITIES", Amount: 30, SpentAt: "2024-01-04"},
	} {
		_, err := svc.Create(context.Background(), 1, in)
		require.NoError(t, err)
	}

	sum, err := svc.Summarize(context.Background(), urlstate.Decode(urlstate.ParseQuery("category=UTILITIES"), Schema))
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 2, Total: 150.5}, sum)
}

func TestListRejectsInvertedRange(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubActivity{}, nil)
	_, err := svc.List(context.Background(), urlstate.Decode(urlstate.ParseQuery("startDate=2024-02-02&endDate=2024-02-01"), Schema))
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.listCalls)
}
