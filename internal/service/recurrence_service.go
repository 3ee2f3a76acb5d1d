package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskbot/internal/model"
	"taskbot/internal/repository"
)

// Advance returns the next due date after from for the given interval.
// Monthly keeps the day of month, clamped to the length of the next month.
// Unknown intervals return from unchanged.
func Advance(from time.Time, interval model.Interval) time.Time {
	switch interval {
	case model.IntervalDaily:
		return from.AddDate(0, 0, 1)
	case model.IntervalWeekly:
		return from.AddDate(0, 0, 7)
	case model.IntervalBiweekly:
		return from.AddDate(0, 0, 14)
	case model.IntervalMonthly:
		return addMonth(from)
	default:
		return from
	}
}

func addMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	next := month + 1
	if last := daysInMonth(next, year); day > last {
		day = last
	}
	return time.Date(year, next, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}

// TickReport summarizes one recurrence tick.
type TickReport struct {
	Date    string
	Fired   int
	Skipped int
}

// RecurrenceService materializes tasks from recurrence rules.
type RecurrenceService struct {
	store *repository.Store
	clock Clock
}

func NewRecurrenceService(store *repository.Store, clock Clock) *RecurrenceService {
	return &RecurrenceService{store: store, clock: clock}
}

// RunTick fires every rule due exactly today: it clones the parent task and
// moves the rule forward. The whole tick is one transaction, so a failed
// write leaves every rule as it was for the next tick to retry.
func (s *RecurrenceService) RunTick(ctx context.Context) (TickReport, error) {
	today := model.Midnight(s.clock.Now())
	report := TickReport{Date: model.FormatDate(today)}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		report.Fired, report.Skipped = 0, 0

		rules, err := tx.Recurrence.ListDue(ctx, report.Date)
		if err != nil {
			return err
		}

		for _, rule := range rules {
			parent, err := tx.Tasks.Get(ctx, rule.TaskID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[info] recurrence rule=%d skipped: task %d is gone", rule.ID, rule.TaskID)
				report.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("load task %d: %w", rule.TaskID, err)
			}

			clone := model.Task{
				UserID:      parent.UserID,
				Title:       parent.Title,
				Description: parent.Description,
				Category:    parent.Category,
				Status:      model.StatusActive,
			}
			if err := tx.Tasks.Create(ctx, &clone); err != nil {
				return err
			}

			next := Advance(today, rule.Interval)
			if next.Equal(today) {
				log.Printf("[warn] recurrence rule=%d has unknown interval %q, next date stays %s", rule.ID, rule.Interval, report.Date)
			}
			if err := tx.Recurrence.Advance(ctx, rule.ID, model.FormatDate(next)); err != nil {
				return err
			}
			report.Fired++
		}
		return nil
	})
	if err != nil {
		return TickReport{Date: report.Date}, fmt.Errorf("recurrence tick %s: %w", report.Date, err)
	}

	log.Printf("[info] recurrence tick date=%s fired=%d skipped=%d", report.Date, report.Fired, report.Skipped)
	return report, nil
}
