package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbot/internal/model"
	"taskbot/internal/selector"
	"taskbot/internal/service"
)

const titleLabelLen = 40

// menu is a paged inline listing reachable from the main keyboard.
type menu struct {
	handler selector.Handler
	prompt  string
	empty   string
}

func buildMenus(tasks *service.TaskService, categories *service.CategoryService, pageSize int) map[selector.Action]menu {
	ownsTask := func(ctx context.Context, owner int64, tok selector.Token) (bool, error) {
		return tasks.OwnsTask(ctx, owner, tok.ID)
	}
	taskLabel := func(t model.Task) string { return shortTitle(t.Title, titleLabelLen) }

	deleteTask := &selector.Selector[model.Task]{
		Tag:      selector.ActionDelete,
		PageSize: pageSize,
		Fetch:    tasks.ActivePage,
		Label:    taskLabel,
		Ref:      func(t model.Task) selector.Token { return selector.SelectID(selector.ActionDelete, t.ID) },
		Owns:     ownsTask,
		Apply: func(ctx context.Context, owner int64, tok selector.Token) (selector.Outcome, error) {
			out, err := tasks.DeleteTask(ctx, owner, tok.ID)
			if err != nil {
				return selector.Outcome{}, err
			}
			log.Printf("[info] task deleted id=%d user=%d applied=%t", tok.ID, owner, out == service.OutcomeApplied)
			return selector.Outcome{Applied: out == service.OutcomeApplied, Message: "Task deleted!"}, nil
		},
	}

	completeTask := &selector.Selector[model.Task]{
		Tag:      selector.ActionComplete,
		PageSize: pageSize,
		Fetch:    tasks.ActivePage,
		Label:    taskLabel,
		Ref:      func(t model.Task) selector.Token { return selector.SelectID(selector.ActionComplete, t.ID) },
		Owns:     ownsTask,
		Apply: func(ctx context.Context, owner int64, tok selector.Token) (selector.Outcome, error) {
			out, err := tasks.CompleteTask(ctx, owner, tok.ID)
			if err != nil {
				return selector.Outcome{}, err
			}
			log.Printf("[info] task completed id=%d user=%d applied=%t", tok.ID, owner, out == service.OutcomeApplied)
			return selector.Outcome{Applied: out == service.OutcomeApplied, Message: "Task completed!"}, nil
		},
	}

	byCategory := &selector.Selector[string]{
		Tag:      selector.ActionCategory,
		PageSize: pageSize,
		Fetch:    categories.Page,
		Label:    categoryLabel,
		Ref:      func(name string) selector.Token { return selector.Select(selector.ActionCategory, name) },
		Apply: func(ctx context.Context, owner int64, tok selector.Token) (selector.Outcome, error) {
			list, err := tasks.ListOpenInCategory(ctx, owner, tok.Key)
			if err != nil {
				return selector.Outcome{}, err
			}
			return selector.Outcome{Applied: true, Message: formatCategoryTasks(tok.Key, list, true)}, nil
		},
	}

	completedOn := &selector.Selector[string]{
		Tag:      selector.ActionCompleted,
		PageSize: pageSize,
		Columns:  2,
		Fetch:    tasks.CompletedDatesPage,
		Label:    func(date string) string { return date },
		Ref:      func(date string) selector.Token { return selector.Select(selector.ActionCompleted, date) },
		Apply: func(ctx context.Context, owner int64, tok selector.Token) (selector.Outcome, error) {
			list, err := tasks.ListCompletedOn(ctx, owner, tok.Key)
			if err != nil {
				return selector.Outcome{}, err
			}
			return selector.Outcome{Applied: true, Message: formatCompletedOn(tok.Key, list)}, nil
		},
	}

	return map[selector.Action]menu{
		selector.ActionDelete:    {handler: deleteTask, prompt: "Choose a task to delete:", empty: "You have no active tasks to delete."},
		selector.ActionComplete:  {handler: completeTask, prompt: "Choose a task to complete:", empty: "You have no active tasks to complete."},
		selector.ActionCategory:  {handler: byCategory, prompt: "Choose a category:", empty: "You have no tasks yet."},
		selector.ActionCompleted: {handler: completedOn, prompt: "Choose a date to view completed tasks:", empty: "You have no completed tasks yet."},
	}
}

func (b *Bot) startSelection(ctx context.Context, chatID, owner int64, action selector.Action) error {
	m, ok := b.menus[action]
	if !ok {
		return b.sendText(chatID, textFallback)
	}
	page, err := m.handler.Render(ctx, owner, 0)
	if err != nil {
		return b.failure(chatID, textSomethingWentWrong, err)
	}
	if page.Empty() {
		return b.sendText(chatID, m.empty)
	}
	return b.sendWithReplyMarkup(chatID, m.prompt, inlineKeyboard(page))
}

func (b *Bot) sendActiveTasks(ctx context.Context, chatID, owner int64) error {
	listings, err := b.tasks.ListActive(ctx, owner)
	if err != nil {
		return b.failure(chatID, textSomethingWentWrong, err)
	}
	return b.sendText(chatID, formatActiveTasks(listings))
}

// sendCategoryListing answers a category name typed outside a conversation
// with every task in it, open or completed.
func (b *Bot) sendCategoryListing(ctx context.Context, chatID, owner int64, category string) error {
	list, err := b.tasks.ListInCategory(ctx, owner, category)
	if err != nil {
		return b.failure(chatID, textSomethingWentWrong, err)
	}
	return b.sendText(chatID, formatCategoryTasks(category, list, false))
}

func inlineKeyboard(page selector.Page) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(page.Rows()))
	for _, row := range page.Rows() {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, c := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Token.String()))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
