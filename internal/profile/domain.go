package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// ErrWrongPassword is returned when the current password does not match.
var ErrWrongPassword = fmt.Errorf("%w: current password is incorrect", httpx.ErrValidation)

// User is an admin account.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"size:200;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateInput changes profile details.
type UpdateInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email,max=200"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

func (in UpdateInput) normalize() UpdateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	return in
}

// PasswordInput changes the password.
type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// Models returns the tables owned by this package.
func Models() []any {
	return []any{&User{}}
}
