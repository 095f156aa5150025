package auth

import (
	"context"
	"time"

	"github.com/warp/erp-engine/generic"
)

// User is a login account. An employee record may link to it.
type User struct {
	ID                generic.ID     `gorm:"primaryKey" json:"id"`
	Username          string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email             string         `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash      string         `gorm:"size:100;not null" json:"-"`
	IsActive          bool           `gorm:"not null" json:"is_active"`
	LastLogin         *time.Time     `json:"last_login,omitempty"`
	PreferredLanguage string         `gorm:"size:10" json:"preferred_language"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Roles             []generic.Role `gorm:"-" json:"roles"`
}

func (User) TableName() string { return "users" }

func (u User) Actor() generic.Actor {
	return generic.Actor{UserID: u.ID, Username: u.Username, Roles: u.Roles}
}

// UserRole grants one role to one user.
type UserRole struct {
	UserID generic.ID   `gorm:"primaryKey" json:"user_id"`
	Role   generic.Role `gorm:"primaryKey;size:30" json:"role"`
}

func (UserRole) TableName() string { return "user_roles" }

type Store interface {
	generic.Transactor

	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id generic.ID) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	// UsernameOrEmailTaken reports whether either value is already in use.
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	TouchLogin(ctx context.Context, id generic.ID, at time.Time) error
	// SetRoles replaces every role of the user.
	SetRoles(ctx context.Context, userID generic.ID, roles []generic.Role) error
	RolesOf(ctx context.Context, userID generic.ID) ([]generic.Role, error)
}
