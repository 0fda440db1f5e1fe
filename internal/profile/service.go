// Package profile lets the signed-in admin manage their account.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	UpdateDetails(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// ActivityPort records changes.
type ActivityPort interface {
	Record(ctx context.Context, entry activity.Entry) error
}

// Service manages user profiles.
type Service struct {
	repo     RepositoryPort
	activity ActivityPort
	logger   *slog.Logger
	cost     int
}

// NewService builds Service.
func NewService(repo RepositoryPort, activity ActivityPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activity: activity, logger: logger, cost: bcrypt.DefaultCost}
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("profile: hash password: %w", err)
	}
	return string(hash), nil
}

// Get loads a user's profile.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Update changes a user's details.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (User, error) {
	input = input.normalize()
	if err := shared.Validate(input); err != nil {
		return User{}, err
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Name = input.Name
	u.Email = input.Email
	u.AvatarURL = input.AvatarURL
	if err := s.repo.UpdateDetails(ctx, &u); err != nil {
		return User{}, err
	}
	s.record(ctx, u.ID, "Updated profile")
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id int64, input PasswordInput) error {
	if err := shared.Validate(input); err != nil {
		return err
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(input.NewPassword, s.cost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.record(ctx, id, "Changed password")
	return nil
}

func (s *Service) record(ctx context.Context, userID int64, desc string) {
	err := s.activity.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      activity.ActionUpdate,
		EntityType:  "user",
		EntityID:    userID,
		Description: desc,
	})
	if err != nil {
		s.logger.Warn("record activity", slog.Int64("user", userID), slog.Any("error", err))
	}
}
