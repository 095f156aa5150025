/*
Package auth owns login accounts, their roles and the tokens that carry them.

FLOW:
  Register  -> bcrypt hash, role Employee
  Login     -> verify hash, stamp last login, issue JWT
  Verify    -> JWT -> generic.Actor, used by the HTTP middleware

Login failures never say which part was wrong.
*/
package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/generic"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

type Service struct {
	Store  Store
	Tokens *Tokens
	Clock  generic.Clock
	Log    zerolog.Logger
}

func NewService(store Store, tokens *Tokens, clock generic.Clock, log zerolog.Logger) *Service {
	return &Service{Store: store, Tokens: tokens, Clock: clock, Log: log}
}

// Register creates an active account with the Employee role.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, generic.Validation("username", "username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, generic.Validation("email", "invalid email %q", email)
	}
	if len(password) < MinPasswordLength {
		return nil, generic.Validation("password", "password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:          username,
		Email:             email,
		PasswordHash:      string(hash),
		IsActive:          true,
		PreferredLanguage: "en",
		Roles:             []generic.Role{generic.RoleEmployee},
	}
	err = s.Store.WithTx(ctx, func(ctx context.Context) error {
		taken, err := s.Store.UsernameOrEmailTaken(ctx, username, email)
		if err != nil {
			return err
		}
		if taken {
			return generic.Conflict("username or email already in use")
		}
		if err := s.Store.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.Store.SetRoles(ctx, user.ID, user.Roles)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Session is the result of a successful login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	invalid := generic.Forbidden("invalid credentials")

	user, err := s.Store.UserByUsername(ctx, strings.TrimSpace(username))
	if generic.IsNotFound(err) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	now := s.Clock.Now()
	if err := s.Store.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	if user.Roles, err = s.Store.RolesOf(ctx, user.ID); err != nil {
		return nil, err
	}

	token, _, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Int64("user_id", user.ID).Msg("login")
	return &Session{Token: token, User: user}, nil
}

// Issue creates a token for an already authenticated user.
func (s *Service) Issue(user *User) (string, error) {
	token, _, err := s.Tokens.Issue(user)
	return token, err
}

func (s *Service) Verify(token string) (generic.Actor, error) {
	return s.Tokens.Verify(token)
}

func (s *Service) User(ctx context.Context, id generic.ID) (*User, error) {
	user, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Roles, err = s.Store.RolesOf(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

// AssignRoles replaces the user's roles. At least one role is required.
func (s *Service) AssignRoles(ctx context.Context, userID generic.ID, roles []generic.Role) (*User, error) {
	if len(roles) == 0 {
		return nil, generic.Validation("roles", "at least one role is required")
	}
	clean := make([]generic.Role, 0, len(roles))
	seen := map[generic.Role]bool{}
	for _, r := range roles {
		parsed, err := generic.ParseRole(string(r))
		if err != nil {
			return nil, err
		}
		if !seen[parsed] {
			seen[parsed] = true
			clean = append(clean, parsed)
		}
	}

	var user *User
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.Store.GetUser(ctx, userID); err != nil {
			return err
		}
		user.Roles = clean
		return s.Store.SetRoles(ctx, userID, clean)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info().Int64("user_id", userID).Interface("roles", clean).Msg("roles assigned")
	return user, nil
}
