package model

import "time"

// Interval is the cadence of a recurrence rule. It is stored exactly as the
// user picked it, so values outside the known set can exist.
type Interval string

const (
	IntervalDaily    Interval = "Daily"
	IntervalWeekly   Interval = "Weekly"
	IntervalBiweekly Interval = "Biweekly"
	IntervalMonthly  Interval = "Monthly"
)

// NoRecurrence is the answer that creates a one-off task.
const NoRecurrence = "None"

// RecurrenceChoices are offered on the recurrence step of task creation.
var RecurrenceChoices = []string{
	string(IntervalDaily),
	string(IntervalWeekly),
	string(IntervalBiweekly),
	string(IntervalMonthly),
	NoRecurrence,
}

// RecurrenceRule makes the engine clone TaskID's task every time NextDate
// (YYYY-MM-DD) equals the current date.
type RecurrenceRule struct {
	ID        uint `gorm:"primaryKey"`
	TaskID    uint `gorm:"uniqueIndex"`
	Interval  Interval
	NextDate  string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the logical schema name.
func (RecurrenceRule) TableName() string {
	return "recurring_rules"
}
