package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ResolveActor maps the verified login name of the caller to its user record.
func (s *Service) ResolveActor(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Warnf("Session references unknown user: %s", username)
		return nil, fmt.Errorf("%q: %w", username, common.ErrIdentityNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AuthorizeMutation succeeds only when actor owns item. Ownership is
// compared by user id.
func AuthorizeMutation(actor *models.User, item *models.TodoItem) error {
	if actor == nil || item == nil || item.OwnerID != actor.ID {
		return common.ErrUnauthorized
	}
	return nil
}

// ResolveItemOrFail fetches an item by id or returns common.ErrNotFound.
func (s *Service) ResolveItemOrFail(ctx context.Context, id int64) (*models.TodoItem, error) {
	item, err := s.store.FindTodoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListForUser returns every item of actor in store order.
func (s *Service) ListForUser(ctx context.Context, actor *models.User) ([]models.TodoItem, error) {
	return s.store.FindTodosByOwner(ctx, actor.ID)
}

// CreateForUser validates the draft, stamps owner and timestamps, and persists it.
func (s *Service) CreateForUser(ctx context.Context, actor *models.User, draft models.TodoPatch) (*models.TodoItem, error) {
	if err := validatePatch(draft); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.TodoItem{
		Description:  draft.Description,
		IsComplete:   draft.IsComplete,
		ItemCategory: draft.ItemCategory,
		Quantity:     draft.Quantity,
		StoreName:    draft.StoreName,
		OwnerID:      actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveTodo(ctx, item); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user": actor.Username, "item_id": item.ID}).Info("Todo item created")
	return item, nil
}

// ApplyEdit copies the editable fields of patch onto existing, refreshes the
// update timestamp and persists the result. Id, owner and creation time are
// left as they are.
func (s *Service) ApplyEdit(ctx context.Context, existing *models.TodoItem, patch models.TodoPatch) (*models.TodoItem, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	edited := *existing
	edited.Description = patch.Description
	edited.IsComplete = patch.IsComplete
	edited.ItemCategory = patch.ItemCategory
	edited.Quantity = patch.Quantity
	edited.StoreName = patch.StoreName

	now := s.now()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Microsecond)
	}
	edited.UpdatedAt = now

	if err := s.store.SaveTodo(ctx, &edited); err != nil {
		return nil, err
	}
	return &edited, nil
}

// GetItem returns an item of the caller.
func (s *Service) GetItem(ctx context.Context, username string, id int64) (*models.TodoItem, error) {
	_, item, err := s.ownedItem(ctx, username, id)
	return item, err
}

// EditItem resolves the caller and the item, checks ownership and applies patch.
func (s *Service) EditItem(ctx context.Context, username string, id int64, patch models.TodoPatch) (*models.TodoItem, error) {
	actor, item, err := s.ownedItem(ctx, username, id)
	if err != nil {
		return nil, err
	}
	edited, err := s.ApplyEdit(ctx, item, patch)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user": actor.Username, "item_id": id}).Info("Todo item updated")
	return edited, nil
}

// DeleteItem resolves the caller and the item, checks ownership and removes it.
func (s *Service) DeleteItem(ctx context.Context, username string, id int64) error {
	actor, item, err := s.ownedItem(ctx, username, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTodo(ctx, item); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user": actor.Username, "item_id": id}).Info("Todo item deleted")
	return nil
}

// ownedItem runs the checks shared by every single-item path, in order:
// actor, existence, ownership.
func (s *Service) ownedItem(ctx context.Context, username string, id int64) (*models.User, *models.TodoItem, error) {
	actor, err := s.ResolveActor(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.ResolveItemOrFail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := AuthorizeMutation(actor, item); err != nil {
		s.log.WithFields(logrus.Fields{"user": actor.Username, "item_id": id}).Warn("Access to foreign todo item denied")
		return nil, nil, fmt.Errorf("todo item %d: %w", id, err)
	}
	return actor, item, nil
}

func validatePatch(p models.TodoPatch) error {
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("description is required: %w", common.ErrValidation)
	}
	return nil
}
