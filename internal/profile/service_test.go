package profile

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

type stubRepo struct {
	users map[int64]User
}

func (s *stubRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) UpdateDetails(ctx context.Context, u *User) error {
	s.users[u.ID] = *u
	return nil
}

func (s *stubRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	u := s.users[id]
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

type stubActivity struct {
	entries []activity.Entry
}

func (s *stubActivity) Record(ctx context.Context, entry activity.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubRepo, *stubActivity) {
	t.Helper()
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{users: map[int64]User{1: {ID: 1, Name: "Admin", Email: "admin@stockroom.test", PasswordHash: hash}}}
	act := &stubActivity{}
	svc := NewService(repo, act, nil)
	svc.cost = bcrypt.MinCost
	return svc, repo, act
}

func TestChangePassword(t *testing.T) {
	svc, repo, act := newTestService(t)

	err := svc.ChangePassword(context.Background(), 1, PasswordInput{CurrentPassword: "wrong", NewPassword: "battery staple"})
	require.ErrorIs(t, err, ErrWrongPassword)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), 1, PasswordInput{CurrentPassword: "correct horse", NewPassword: "battery staple"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[1].PasswordHash), []byte("battery staple")))
	require.Len(t, act.entries, 1)
	assert.Equal(t, "Changed password", act.entries[0].Description)
}

func TestChangePasswordValidates(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.ChangePassword(context.Background(), 1, PasswordInput{CurrentPassword: "correct horse", NewPassword: "short"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	err = svc.ChangePassword(context.Background(), 1, PasswordInput{CurrentPassword: "correct horse", NewPassword: "correct horse"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateNormalisesEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u, err := svc.Update(context.Background(), 1, UpdateInput{Name: "Ops", Email: " Ops@Stockroom.Test "})
	require.NoError(t, err)
	assert.Equal(t, "ops@stockroom.test", u.Email)
	assert.Equal(t, "ops@stockroom.test", repo.users[1].Email)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestProfileEndpointsUseDefaultUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, nil, 1).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@stockroom.test")
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	body := bytes.NewReader([]byte(`{"current_password":"nope","new_password":"longenough"}`))
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profile/password", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
