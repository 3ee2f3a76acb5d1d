package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"taskbot/internal/model"
	"taskbot/internal/repository"
)

// Outcome tells an effect that ran apart from one that was silently skipped
// because the target does not exist for the caller.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeApplied
)

// TaskInput represents data collected for a new task. Recurrence holds the
// user's answer verbatim; model.NoRecurrence means a one-off task.
type TaskInput struct {
	Title       string
	Description string
	Category    string
	Recurrence  string
}

// CreateResult is what CreateTask wrote.
type CreateResult struct {
	Task model.Task
	Rule *model.RecurrenceRule
}

// TaskListing is an active task together with its cadence, if any.
type TaskListing struct {
	Task     model.Task
	Interval model.Interval
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store *repository.Store
	clock Clock
}

func NewTaskService(store *repository.Store, clock Clock) *TaskService {
	return &TaskService{store: store, clock: clock}
}

func (s *TaskService) today() string {
	return model.FormatDate(s.clock.Now())
}

// CreateTask writes the task, its category label and, unless the user chose
// no recurrence, a rule due one interval from today. All of it commits or
// none of it does.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, input TaskInput) (*CreateResult, error) {
	result := &CreateResult{}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task := model.Task{
			UserID:      userID,
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			Status:      model.StatusActive,
		}
		if err := tx.Tasks.Create(ctx, &task); err != nil {
			return err
		}
		if _, err := tx.Categories.GetOrCreate(ctx, userID, input.Category); err != nil {
			return err
		}
		result.Task = task

		if input.Recurrence == model.NoRecurrence {
			return nil
		}
		interval := model.Interval(input.Recurrence)
		rule := model.RecurrenceRule{
			TaskID:   task.ID,
			Interval: interval,
			NextDate: model.FormatDate(Advance(model.Midnight(s.clock.Now()), interval)),
		}
		if err := tx.Recurrence.Create(ctx, &rule); err != nil {
			return err
		}
		result.Rule = &rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OwnsTask reports whether taskID exists and belongs to userID.
func (s *TaskService) OwnsTask(ctx context.Context, userID int64, taskID uint) (bool, error) {
	_, err := s.store.Tasks.FindByID(ctx, userID, taskID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find task: %w", err)
	}
}

// CompleteTask marks an active task of userID completed today. Tasks of
// other users and already completed tasks are left alone.
func (s *TaskService) CompleteTask(ctx context.Context, userID int64, taskID uint) (Outcome, error) {
	outcome := OutcomeIgnored
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, userID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find task: %w", err)
		}
		if task.IsCompleted() {
			return nil
		}
		today := s.today()
		ok, err := tx.Tasks.UpdateStatus(ctx, taskID, userID, model.StatusCompleted, &today)
		if err != nil {
			return err
		}
		if ok {
			outcome = OutcomeApplied
		}
		return nil
	})
	return outcome, err
}

// DeleteTask removes a task of userID. A recurrence rule pointing at it is
// kept and skipped by the engine from then on.
func (s *TaskService) DeleteTask(ctx context.Context, userID int64, taskID uint) (Outcome, error) {
	ok, err := s.store.Tasks.Delete(ctx, taskID, userID)
	if err != nil {
		return OutcomeIgnored, err
	}
	if !ok {
		return OutcomeIgnored, nil
	}

	// The rule is kept. Ticks skip it once its parent is gone.
	rule, err := s.store.Recurrence.FindByTaskID(ctx, taskID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		log.Printf("look up rule of deleted task %d: %v", taskID, err)
	default:
		log.Printf("[info] task %d deleted, recurrence rule %d (%s) kept", taskID, rule.ID, rule.Interval)
	}
	return OutcomeApplied, nil
}

// ActivePage returns one page of userID's active tasks, newest first.
func (s *TaskService) ActivePage(ctx context.Context, userID int64, page, size int) ([]model.Task, error) {
	return s.store.Tasks.List(ctx, userID, repository.TaskFilter{Status: model.StatusActive}, page, size)
}

// ListActive returns every active task of userID with its recurrence interval.
func (s *TaskService) ListActive(ctx context.Context, userID int64) ([]TaskListing, error) {
	tasks, err := s.store.Tasks.List(ctx, userID, repository.TaskFilter{Status: model.StatusActive}, 0, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	intervals, err := s.store.Recurrence.IntervalsByTask(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TaskListing, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, TaskListing{Task: task, Interval: intervals[task.ID]})
	}
	return out, nil
}

// ListInCategory returns all of userID's tasks labelled category.
func (s *TaskService) ListInCategory(ctx context.Context, userID int64, category string) ([]model.Task, error) {
	return s.store.Tasks.List(ctx, userID, repository.TaskFilter{Category: &category}, 0, 0)
}

// ListOpenInCategory returns userID's tasks in category that are not
// completed or were completed today.
func (s *TaskService) ListOpenInCategory(ctx context.Context, userID int64, category string) ([]model.Task, error) {
	return s.store.Tasks.List(ctx, userID, repository.TaskFilter{Category: &category, OpenOrCompletedOn: s.today()}, 0, 0)
}

// CompletedDatesPage returns one page of days on which userID completed tasks.
func (s *TaskService) CompletedDatesPage(ctx context.Context, userID int64, page, size int) ([]string, error) {
	return s.store.Tasks.ListCompletedDates(ctx, userID, page, size)
}

// ListCompletedOn returns the tasks userID completed on date.
func (s *TaskService) ListCompletedOn(ctx context.Context, userID int64, date string) ([]model.Task, error) {
	return s.store.Tasks.List(ctx, userID, repository.TaskFilter{Status: model.StatusCompleted, CompletedDate: date}, 0, 0)
}
