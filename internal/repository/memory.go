package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
)

// MemoryStore is a process-local store with the same contract as Repository.
// Used with STORAGE=memory and in tests.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int64]models.User
	todos      map[int64]models.TodoItem
	revoked    map[string]time.Time
	nextUserID int64
	nextTodoID int64
	now        func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]models.User),
		todos:   make(map[int64]models.TodoItem),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == 0 {
		for _, u := range m.users {
			if u.Username == user.Username {
				return fmt.Errorf("username %q: %w", user.Username, common.ErrAlreadyExists)
			}
		}
		m.nextUserID++
		user.ID = m.nextUserID
		user.CreatedAt = m.now()
		m.users[user.ID] = *user
		return nil
	}

	stored, ok := m.users[user.ID]
	if !ok {
		return fmt.Errorf("user: %w", common.ErrNotFound)
	}
	stored.Name = user.Name
	stored.PasswordHash = user.PasswordHash
	m.users[user.ID] = stored
	return nil
}

func (m *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", common.ErrNotFound)
}

func (m *MemoryStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", common.ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user: %w", common.ErrNotFound)
	}
	delete(m.users, id)
	for tid, it := range m.todos {
		if it.OwnerID == id {
			delete(m.todos, tid)
		}
	}
	return nil
}

func (m *MemoryStore) SaveTodo(_ context.Context, item *models.TodoItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == 0 {
		if _, ok := m.users[item.OwnerID]; !ok {
			return fmt.Errorf("failed to create todo item: owner %d: %w", item.OwnerID, common.ErrNotFound)
		}
		m.nextTodoID++
		item.ID = m.nextTodoID
		m.todos[item.ID] = *item
		return nil
	}

	stored, ok := m.todos[item.ID]
	if !ok {
		return fmt.Errorf("todo item: %w", common.ErrNotFound)
	}
	stored.Description = item.Description
	stored.IsComplete = item.IsComplete
	stored.ItemCategory = item.ItemCategory
	stored.Quantity = item.Quantity
	stored.StoreName = item.StoreName
	stored.UpdatedAt = item.UpdatedAt
	m.todos[item.ID] = stored
	return nil
}

func (m *MemoryStore) FindTodoByID(_ context.Context, id int64) (*models.TodoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.todos[id]
	if !ok {
		return nil, fmt.Errorf("todo item %d: %w", id, common.ErrNotFound)
	}
	return &it, nil
}

func (m *MemoryStore) DeleteTodo(_ context.Context, item *models.TodoItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.todos[item.ID]; !ok {
		return fmt.Errorf("todo item: %w", common.ErrNotFound)
	}
	delete(m.todos, item.ID)
	return nil
}

func (m *MemoryStore) FindTodosByOwner(_ context.Context, ownerID int64) ([]models.TodoItem, error) {
	return m.selectTodos(func(it models.TodoItem) bool { return it.OwnerID == ownerID }), nil
}

func (m *MemoryStore) FindTodosByOwnerAndCreatedBetween(_ context.Context, ownerID int64, start, end time.Time) ([]models.TodoItem, error) {
	return m.selectTodos(func(it models.TodoItem) bool {
		return it.OwnerID == ownerID && between(it.CreatedAt, start, end)
	}), nil
}

func (m *MemoryStore) FindTodosByOwnerAndCompletedAndCreatedBetween(_ context.Context, ownerID int64, completed bool, start, end time.Time) ([]models.TodoItem, error) {
	return m.selectTodos(func(it models.TodoItem) bool {
		return it.OwnerID == ownerID && it.IsComplete == completed && between(it.CreatedAt, start, end)
	}), nil
}

func (m *MemoryStore) RevokeToken(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.revoked[tokenID]; !ok {
		m.revoked[tokenID] = expiresAt
	}
	return nil
}

func (m *MemoryStore) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.revoked[tokenID]
	return ok, nil
}

func (m *MemoryStore) PurgeRevokedTokens(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, exp := range m.revoked {
		if exp.Before(cutoff) {
			delete(m.revoked, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) selectTodos(keep func(models.TodoItem) bool) []models.TodoItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := []models.TodoItem{}
	for _, it := range m.todos {
		if keep(it) {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// between matches SQL BETWEEN: both bounds inclusive.
func between(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
