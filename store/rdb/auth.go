package rdb

import (
	"context"
	"time"

	"github.com/warp/erp-engine/auth"
	"github.com/warp/erp-engine/generic"
)

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	return translate(s.conn(ctx).Create(u).Error, "user", u.Username)
}

func (s *Store) GetUser(ctx context.Context, id generic.ID) (*auth.User, error) {
	var u auth.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*auth.User, error) {
	var u auth.User
	if err := s.conn(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, "user", username)
	}
	return &u, nil
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&auth.User{}).Where("username = ? OR email = ?", username, email).Count(&n).Error
	return n > 0, translate(err, "user", username)
}

func (s *Store) TouchLogin(ctx context.Context, id generic.ID, at time.Time) error {
	err := s.conn(ctx).Model(&auth.User{}).Where("id = ?", id).Update("last_login", at.UTC()).Error
	return translate(err, "user", id)
}

func (s *Store) SetRoles(ctx context.Context, userID generic.ID, roles []generic.Role) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		if err := s.conn(ctx).Where("user_id = ?", userID).Delete(&auth.UserRole{}).Error; err != nil {
			return translate(err, "user role", userID)
		}
		if len(roles) == 0 {
			return nil
		}
		rows := make([]auth.UserRole, 0, len(roles))
		for _, r := range roles {
			rows = append(rows, auth.UserRole{UserID: userID, Role: r})
		}
		return translate(s.conn(ctx).Create(&rows).Error, "user role", userID)
	})
}

func (s *Store) RolesOf(ctx context.Context, userID generic.ID) ([]generic.Role, error) {
	var roles []generic.Role
	err := s.conn(ctx).Model(&auth.UserRole{}).Where("user_id = ?", userID).Order("role").Pluck("role", &roles).Error
	return roles, translate(err, "user role", userID)
}
