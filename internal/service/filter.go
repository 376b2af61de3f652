package service

import (
	"context"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
)

// Filter returns the items of actor created within [startDate, endDate],
// optionally narrowed by completion flag.
//
// Both bounds are taken as the start of their calendar day in the service
// location, so endDate excludes anything created after midnight of that day.
//
// Status selection:
//   - both flags submitted, or neither set to true: status is ignored
//   - only Completed=true: completed items
//   - only NotCompleted=true: incomplete items
func (s *Service) Filter(ctx context.Context, actor *models.User, startDate, endDate time.Time, status models.StatusFilter) ([]models.TodoItem, error) {
	start := s.startOfDay(startDate)
	end := s.startOfDay(endDate)

	switch {
	case status.Completed != nil && status.NotCompleted != nil:
		return s.store.FindTodosByOwnerAndCreatedBetween(ctx, actor.ID, start, end)
	case status.Completed != nil && *status.Completed:
		return s.store.FindTodosByOwnerAndCompletedAndCreatedBetween(ctx, actor.ID, true, start, end)
	case status.NotCompleted != nil && *status.NotCompleted:
		return s.store.FindTodosByOwnerAndCompletedAndCreatedBetween(ctx, actor.ID, false, start, end)
	default:
		return s.store.FindTodosByOwnerAndCreatedBetween(ctx, actor.ID, start, end)
	}
}

func (s *Service) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
