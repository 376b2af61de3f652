package service

import (
	"context"
	"time"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/sirupsen/logrus"
)

// UserStore persists users.
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// TodoStore persists todo items.
type TodoStore interface {
	SaveTodo(ctx context.Context, item *models.TodoItem) error
	FindTodoByID(ctx context.Context, id int64) (*models.TodoItem, error)
	DeleteTodo(ctx context.Context, item *models.TodoItem) error
	FindTodosByOwner(ctx context.Context, ownerID int64) ([]models.TodoItem, error)
	FindTodosByOwnerAndCreatedBetween(ctx context.Context, ownerID int64, start, end time.Time) ([]models.TodoItem, error)
	FindTodosByOwnerAndCompletedAndCreatedBetween(ctx context.Context, ownerID int64, completed bool, start, end time.Time) ([]models.TodoItem, error)
}

// TokenStore keeps ids of signed-out session tokens.
type TokenStore interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeRevokedTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the record store the service runs against.
type Store interface {
	UserStore
	TodoStore
	TokenStore
}

// Hasher is the one-way credential hasher.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// Tokens issues and verifies session tokens.
type Tokens interface {
	Issue(session models.SessionClaims) (string, time.Time, error)
	Parse(token string) (models.SessionClaims, time.Time, error)
}

// Service handles business logic
type Service struct {
	store  Store
	hasher Hasher
	tokens Tokens
	log    *logrus.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService initializes a new service
func NewService(store Store, hasher Hasher, tokens Tokens, log *logrus.Logger, cfg *config.Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		loc:    loc,
		// Postgres keeps microseconds; truncating keeps stored and returned values equal.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Location is the zone filter dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}
