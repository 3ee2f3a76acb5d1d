package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskbot/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks *TaskService
}

func NewReminderService(tasks *TaskService) *ReminderService {
	return &ReminderService{tasks: tasks}
}

// DailySummary renders user's active tasks as HTML. It returns an empty
// string when there is nothing to report.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	listings, err := s.tasks.ListActive(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(listings) == 0 {
		return "", nil
	}

	var plain, recurring []TaskListing
	for _, l := range listings {
		if l.Interval != "" {
			recurring = append(recurring, l)
			continue
		}
		plain = append(plain, l)
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", model.FormatDate(now)))

	builder.WriteString("🔥 <b>Active tasks</b>\n")
	if len(plain) == 0 {
		builder.WriteString("— none\n")
	}
	for _, l := range plain {
		builder.WriteString(formatDigestTask(l))
	}

	builder.WriteString("\n♻️ <b>Recurring tasks</b>\n")
	if len(recurring) == 0 {
		builder.WriteString("— none\n")
	}
	for _, l := range recurring {
		builder.WriteString(formatDigestTask(l))
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatDigestTask(l TaskListing) string {
	var sb strings.Builder
	icon := "🟢"
	if l.Interval != "" {
		icon = "♻️"
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(l.Task.Title))))
	if c := strings.TrimSpace(l.Task.Category); c != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(c)))
	}
	if l.Interval != "" {
		sb.WriteString(fmt.Sprintf(" · %s", html.EscapeString(string(l.Interval))))
	}
	if d := strings.TrimSpace(l.Task.Description); d != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(d)))
	}
	sb.WriteByte('\n')
	return sb.String()
}
