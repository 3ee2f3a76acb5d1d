package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskbot/internal/model"
)

// RecurrenceRepository stores recurrence rules.
type RecurrenceRepository struct {
	db *gorm.DB
}

func NewRecurrenceRepository(db *gorm.DB) *RecurrenceRepository {
	return &RecurrenceRepository{db: db}
}

func (r *RecurrenceRepository) Create(ctx context.Context, rule *model.RecurrenceRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("create recurrence rule: %w", err)
	}
	return nil
}

// ListDue returns the rules whose next date is exactly date.
func (r *RecurrenceRepository) ListDue(ctx context.Context, date string) ([]model.RecurrenceRule, error) {
	var rules []model.RecurrenceRule
	if err := r.db.WithContext(ctx).Where("next_date = ?", date).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list due rules: %w", err)
	}
	return rules, nil
}

func (r *RecurrenceRepository) Advance(ctx context.Context, ruleID uint, nextDate string) error {
	res := r.db.WithContext(ctx).Model(&model.RecurrenceRule{}).Where("id = ?", ruleID).Update("next_date", nextDate)
	if res.Error != nil {
		return fmt.Errorf("advance rule %d: %w", ruleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("advance rule %d: %w", ruleID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *RecurrenceRepository) FindByTaskID(ctx context.Context, taskID uint) (*model.RecurrenceRule, error) {
	var rule model.RecurrenceRule
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// IntervalsByTask maps each of taskIDs that has a rule to its interval.
func (r *RecurrenceRepository) IntervalsByTask(ctx context.Context, taskIDs []uint) (map[uint]model.Interval, error) {
	out := make(map[uint]model.Interval, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	var rules []model.RecurrenceRule
	if err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list rules by task: %w", err)
	}
	for _, rule := range rules {
		out[rule.TaskID] = rule.Interval
	}
	return out, nil
}
