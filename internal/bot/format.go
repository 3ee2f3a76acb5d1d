package bot

import (
	"fmt"
	"strings"
	"unicode"

	"taskbot/internal/model"
	"taskbot/internal/service"
)

const (
	iconDone    = "✅"
	iconPending = "⏳"
	iconTask    = "📌"
)

func formatActiveTasks(listings []service.TaskListing) string {
	if len(listings) == 0 {
		return "You have no active tasks."
	}
	var b strings.Builder
	b.WriteString("<b>Your active tasks:</b>\n")
	for i, l := range listings {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, escape(normalizeTitle(l.Task.Title))))
		if l.Task.Category != "" {
			b.WriteString(fmt.Sprintf(" (%s)", escape(l.Task.Category)))
		}
		if l.Interval != "" {
			b.WriteString(fmt.Sprintf(" ♻️ %s", escape(string(l.Interval))))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// formatCategoryTasks lists tasks of one category, marking completed ones.
// pendingMark picks whether open tasks get an icon too.
func formatCategoryTasks(category string, tasks []model.Task, pendingMark bool) string {
	if len(tasks) == 0 {
		return fmt.Sprintf("There are no tasks in category '%s'.", escape(category))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tasks in category '<b>%s</b>':\n", escape(category)))
	for i, task := range tasks {
		mark := ""
		switch {
		case task.IsCompleted():
			mark = iconDone + " "
		case pendingMark:
			mark = iconPending + " "
		}
		b.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, mark, escape(normalizeTitle(task.Title))))
	}
	return b.String()
}

func formatCompletedOn(date string, tasks []model.Task) string {
	if len(tasks) == 0 {
		return fmt.Sprintf("No completed tasks on %s.", date)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Completed tasks on <b>%s</b>:\n\n", date))
	for i, task := range tasks {
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, iconTask, escape(normalizeTitle(task.Title))))
		if task.Description != "" {
			b.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Description)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func categoryLabel(name string) string {
	var icon string
	switch strings.TrimSpace(name) {
	case "Work":
		icon = "💼"
	case "Personal":
		icon = "🧩"
	case "Study":
		icon = "🎓"
	case "Other":
		icon = "🗂"
	default:
		icon = "🏷"
	}
	return icon + " " + shortTitle(name, 40)
}
