package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is wrapped by repositories when an insert hits a uniqueness
// constraint. Callers resolve the race by re-fetching the winning row.
var ErrDuplicate = errors.New("duplicate record")

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Apply copies the user-level fields of a partial update onto the user.
// Unlike profile scalars these follow a skip-when-absent rule only: a
// missing field leaves the stored value alone.
func (u *User) Apply(update ProfileUpdate) {
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = *update.PhoneNumber
	}
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
