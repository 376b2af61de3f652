package service

import (
	"context"

	"github.com/Dan9191/todo-service/internal/models"
)

// Digest lists the open items of one user.
type Digest struct {
	User  models.User
	Items []models.TodoItem
}

// OpenItemDigests collects, for every user with an e-mail address and at
// least one incomplete item, the incomplete items.
func (s *Service) OpenItemDigests(ctx context.Context) ([]Digest, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var digests []Digest
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		items, err := s.store.FindTodosByOwner(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		var open []models.TodoItem
		for _, it := range items {
			if !it.IsComplete {
				open = append(open, it)
			}
		}
		if len(open) > 0 {
			digests = append(digests, Digest{User: u, Items: open})
		}
	}
	return digests, nil
}
