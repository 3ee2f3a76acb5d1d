package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskbot/internal/model"
)

// TaskFilter narrows task listings. Zero fields do not filter.
type TaskFilter struct {
	Status        model.TaskStatus
	Category      *string
	CompletedDate string
	// OpenOrCompletedOn keeps tasks without a completed date plus those
	// completed on this date.
	OpenOrCompletedOn string
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.Status == "" {
		task.Status = model.StatusActive
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID returns the task only if userID owns it.
func (r *TaskRepository) FindByID(ctx context.Context, userID int64, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Get loads a task without an owner check. Used by the recurrence engine,
// which works on rule/task pairs it already trusts.
func (r *TaskRepository) Get(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns userID's tasks newest first. A non-positive size disables paging.
func (r *TaskRepository) List(ctx context.Context, userID int64, filter TaskFilter, page, size int) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.CompletedDate != "" {
		q = q.Where("completed_date = ?", filter.CompletedDate)
	}
	if filter.OpenOrCompletedOn != "" {
		q = q.Where("(completed_date IS NULL OR completed_date = ?)", filter.OpenOrCompletedOn)
	}
	q = q.Order("id DESC")
	if size > 0 {
		q = q.Limit(size).Offset(page * size)
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListDistinctCategories returns the non-empty category values used on
// userID's tasks, alphabetically.
func (r *TaskRepository) ListDistinctCategories(ctx context.Context, userID int64, page, size int) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Distinct().
		Where("user_id = ? AND category <> ''", userID).
		Order("category ASC")
	if size > 0 {
		q = q.Limit(size).Offset(page * size)
	}

	var categories []string
	if err := q.Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListCompletedDates returns the distinct days on which userID completed
// tasks, newest first.
func (r *TaskRepository) ListCompletedDates(ctx context.Context, userID int64, page, size int) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Distinct().
		Where("user_id = ? AND status = ? AND completed_date IS NOT NULL", userID, model.StatusCompleted).
		Order("completed_date DESC")
	if size > 0 {
		q = q.Limit(size).Offset(page * size)
	}

	var dates []string
	if err := q.Pluck("completed_date", &dates).Error; err != nil {
		return nil, fmt.Errorf("list completed dates: %w", err)
	}
	return dates, nil
}

// UpdateStatus sets status and completed date on a task owned by userID.
// It reports false when no such task exists for that owner.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID uint, userID int64, status model.TaskStatus, completedDate *string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(map[string]interface{}{
			"status":         status,
			"completed_date": completedDate,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update task status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a task owned by userID. It reports false when nothing matched.
func (r *TaskRepository) Delete(ctx context.Context, taskID uint, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
