package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
)

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	if strings.TrimSpace(reg.Name) == "" || reg.Username == "" || reg.Password == "" {
		return nil, fmt.Errorf("name, username and password are required: %w", common.ErrValidation)
	}

	hashed, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         reg.Name,
		Username:     reg.Username,
		Email:        strings.TrimSpace(reg.Email),
		PasswordHash: hashed,
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, nil
}

// SignIn verifies the credentials and returns a signed session token.
func (s *Service) SignIn(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", time.Time{}, common.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", time.Time{}, common.ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(sessionFor(user))
	if err != nil {
		return "", time.Time{}, err
	}

	s.log.Infof("User signed in: %s", user.Username)
	return token, expires, nil
}

// Authenticate verifies a session token and rejects signed-out ones.
func (s *Service) Authenticate(ctx context.Context, token string) (models.SessionClaims, time.Time, error) {
	session, expires, err := s.tokens.Parse(token)
	if err != nil {
		return models.SessionClaims{}, time.Time{}, err
	}
	if session.TokenID != "" {
		revoked, err := s.store.IsTokenRevoked(ctx, session.TokenID)
		if err != nil {
			return models.SessionClaims{}, time.Time{}, err
		}
		if revoked {
			return models.SessionClaims{}, time.Time{}, fmt.Errorf("%w: signed out", common.ErrInvalidToken)
		}
	}
	return session, expires, nil
}

// SignOut revokes the session token until its natural expiry.
func (s *Service) SignOut(ctx context.Context, session models.SessionClaims, expires time.Time) error {
	if session.TokenID == "" {
		return nil
	}
	if err := s.store.RevokeToken(ctx, session.TokenID, expires); err != nil {
		return err
	}
	s.log.Infof("User signed out: %s", session.Username)
	return nil
}

// PurgeRevokedTokens forgets revocations of tokens that have expired anyway.
func (s *Service) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	return s.store.PurgeRevokedTokens(ctx, s.now())
}

// ListUsers returns all users
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.FindUserByID(ctx, id)
}

// UpdateUser changes the display name and password of a user.
func (s *Service) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if strings.TrimSpace(upd.Name) == "" || upd.Password == "" {
		return nil, fmt.Errorf("name and password are required: %w", common.ErrValidation)
	}

	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(upd.Password)
	if err != nil {
		return nil, err
	}
	user.Name = upd.Name
	user.PasswordHash = hashed
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User updated: %s", user.Username)
	return user, nil
}

// DeleteUser removes a user together with the items it owns.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Infof("User deleted: %d", id)
	return nil
}

func sessionFor(user *models.User) models.SessionClaims {
	return models.SessionClaims{
		Username:    user.Username,
		Authorities: []models.Authority{models.AuthorityAdmin},
	}
}
