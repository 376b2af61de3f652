package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
)

const todoColumns = `id, description, is_complete, created_at, updated_at, item_category, quantity, store_name, user_id`

// SaveTodo inserts an item without an id, otherwise updates its mutable
// fields and update timestamp. Owner and creation time are never rewritten.
func (r *Repository) SaveTodo(ctx context.Context, item *models.TodoItem) error {
	if item.ID == 0 {
		query := `
			INSERT INTO todo_items (description, is_complete, created_at, updated_at, item_category, quantity, store_name, user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`
		err := r.db.QueryRowContext(ctx, query,
			item.Description, item.IsComplete, item.CreatedAt, item.UpdatedAt,
			item.ItemCategory, item.Quantity, item.StoreName, item.OwnerID).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create todo item: %w", err)
		}
		return nil
	}

	query := `
		UPDATE todo_items
		SET description = $1, is_complete = $2, item_category = $3, quantity = $4, store_name = $5, updated_at = $6
		WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		item.Description, item.IsComplete, item.ItemCategory, item.Quantity, item.StoreName, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update todo item: %w", err)
	}
	return expectOneRow(res, "todo item")
}

// FindTodoByID retrieves a single item
func (r *Repository) FindTodoByID(ctx context.Context, id int64) (*models.TodoItem, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_items WHERE id = $1`
	item := &models.TodoItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Description, &item.IsComplete, &item.CreatedAt, &item.UpdatedAt,
		&item.ItemCategory, &item.Quantity, &item.StoreName, &item.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo item %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo item: %w", err)
	}
	return item, nil
}

// DeleteTodo removes an item
func (r *Repository) DeleteTodo(ctx context.Context, item *models.TodoItem) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todo_items WHERE id = $1`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to delete todo item: %w", err)
	}
	return expectOneRow(res, "todo item")
}

// FindTodosByOwner returns all items of a user in insertion order
func (r *Repository) FindTodosByOwner(ctx context.Context, ownerID int64) ([]models.TodoItem, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_items WHERE user_id = $1 ORDER BY id`
	return r.queryTodos(ctx, query, ownerID)
}

// FindTodosByOwnerAndCreatedBetween returns items created within [start, end], both inclusive.
func (r *Repository) FindTodosByOwnerAndCreatedBetween(ctx context.Context, ownerID int64, start, end time.Time) ([]models.TodoItem, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_items
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY id`
	return r.queryTodos(ctx, query, ownerID, start, end)
}

// FindTodosByOwnerAndCompletedAndCreatedBetween narrows FindTodosByOwnerAndCreatedBetween by completion flag.
func (r *Repository) FindTodosByOwnerAndCompletedAndCreatedBetween(ctx context.Context, ownerID int64, completed bool, start, end time.Time) ([]models.TodoItem, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_items
		WHERE user_id = $1 AND is_complete = $2 AND created_at BETWEEN $3 AND $4
		ORDER BY id`
	return r.queryTodos(ctx, query, ownerID, completed, start, end)
}

func (r *Repository) queryTodos(ctx context.Context, query string, args ...any) ([]models.TodoItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query todo items: %w", err)
	}
	defer rows.Close()

	items := []models.TodoItem{}
	for rows.Next() {
		var it models.TodoItem
		if err := rows.Scan(
			&it.ID, &it.Description, &it.IsComplete, &it.CreatedAt, &it.UpdatedAt,
			&it.ItemCategory, &it.Quantity, &it.StoreName, &it.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan todo item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query todo items: %w", err)
	}
	return items, nil
}
