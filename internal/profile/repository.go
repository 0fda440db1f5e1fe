package profile

import (
	"context"

	"gorm.io/gorm"

	"github.com/odyssey-erp/stockroom/internal/platform/db"
)

// Repository persists users.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Get loads one user.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, db.Translate(err)
}

// UpdateDetails saves name, email and avatar.
func (r *Repository) UpdateDetails(ctx context.Context, u *User) error {
	err := r.db.WithContext(ctx).Model(u).Select("name", "email", "avatar_url").Updates(u).Error
	return db.Translate(err)
}

// UpdatePassword stores a new password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash).Error
	return db.Translate(err)
}

// Create inserts u.
func (r *Repository) Create(ctx context.Context, u *User) error {
	return db.Translate(r.db.WithContext(ctx).Create(u).Error)
}
