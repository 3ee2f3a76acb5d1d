package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbot/internal/conversation"
	"taskbot/internal/model"
	"taskbot/internal/repository"
	"taskbot/internal/selector"
	"taskbot/internal/service"
)

const (
	menuLabelAddTask       = "Add task"
	menuLabelCompleted     = "Completed tasks"
	menuLabelByCategory    = "Tasks by category"
	menuLabelMyTasks       = "My tasks"
	menuLabelDeleteTask    = "Delete task"
	menuLabelCompleteTask  = "Complete task"
	menuLabelDisable       = "Disable bot"
	textFallback           = "Sorry, I don't understand this command. Use the menu."
	textUnknownCommand     = "Unknown command. Use the menu."
	textSaveFailed         = "Could not save the task, please start again."
	textSomethingWentWrong = "Something went wrong, please try again later."
)

// API is the part of *tgbotapi.BotAPI the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Deps are the services the bot dispatches to.
type Deps struct {
	Users         *repository.UserRepository
	Tasks         *service.TaskService
	Categories    *service.CategoryService
	Reminders     *service.ReminderService
	Conversations *conversation.Engine
	Clock         service.Clock
	PageSize      int
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           API
	users         *repository.UserRepository
	tasks         *service.TaskService
	reminders     *service.ReminderService
	conversations *conversation.Engine
	clock         service.Clock
	menus         map[selector.Action]menu
}

func New(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return NewWithAPI(api, deps), nil
}

// NewWithAPI builds a Bot over an already connected API.
func NewWithAPI(api API, deps Deps) *Bot {
	return &Bot{
		api:           api,
		users:         deps.Users,
		tasks:         deps.Tasks,
		reminders:     deps.Reminders,
		conversations: deps.Conversations,
		clock:         deps.Clock,
		menus:         buildMenus(deps.Tasks, deps.Categories, deps.PageSize),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return ctx.Err()
			}
			// Updates still queued at shutdown are left to Telegram to redeliver.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		b.abandonDraft(msg.From.ID)
		return b.handleCommand(ctx, msg)
	}

	if err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	text := strings.TrimSpace(msg.Text)
	if handled, err := b.handleMenuAlias(ctx, msg, text); handled {
		return err
	}

	if b.conversations.Active(msg.From.ID) {
		log.Printf("[info] conversation step %s from %d", b.conversations.Stage(msg.From.ID), msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	if model.IsSuggestedCategory(text) {
		return b.sendCategoryListing(ctx, msg.Chat.ID, msg.From.ID, text)
	}

	return b.sendText(msg.Chat.ID, textFallback)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, textUnknownCommand)
	}
}

// handleMenuAlias runs a top-level menu entry. Any draft in progress is
// dropped first.
func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message, text string) (bool, error) {
	var run func() error
	switch text {
	case menuLabelAddTask:
		run = func() error { return b.startNewTaskConversation(msg) }
	case menuLabelMyTasks:
		run = func() error { return b.sendActiveTasks(ctx, msg.Chat.ID, msg.From.ID) }
	case menuLabelByCategory:
		run = func() error { return b.startSelection(ctx, msg.Chat.ID, msg.From.ID, selector.ActionCategory) }
	case menuLabelCompleted:
		run = func() error { return b.startSelection(ctx, msg.Chat.ID, msg.From.ID, selector.ActionCompleted) }
	case menuLabelDeleteTask:
		run = func() error { return b.startSelection(ctx, msg.Chat.ID, msg.From.ID, selector.ActionDelete) }
	case menuLabelCompleteTask:
		run = func() error { return b.startSelection(ctx, msg.Chat.ID, msg.From.ID, selector.ActionComplete) }
	case menuLabelDisable:
		run = func() error { return b.handleDisable(ctx, msg) }
	default:
		return false, nil
	}
	b.abandonDraft(msg.From.ID)
	return true, run()
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.users.Upsert(ctx, msg.From.ID, displayName(msg.From)); err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, "Welcome to Task Manager!")
}

func (b *Bot) handleDisable(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.users.SetActive(ctx, msg.From.ID, false); err != nil {
		return b.failure(msg.Chat.ID, textSomethingWentWrong, err)
	}
	log.Printf("[info] user %d disabled the bot", msg.From.ID)
	return b.sendText(msg.Chat.ID, "Bot disabled. Send /start to enable it again.")
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	reply := b.conversations.Start(msg.From.ID)
	return b.sendWithReplyMarkup(msg.Chat.ID, escape(reply.Text), tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	reply, err := b.conversations.Handle(ctx, msg.From.ID, msg.Text)
	switch {
	case errors.Is(err, conversation.ErrNoSession):
		return b.sendText(msg.Chat.ID, textFallback)
	case err != nil:
		return b.failure(msg.Chat.ID, textSaveFailed, err)
	}

	if reply.Committed != nil {
		return b.sendText(msg.Chat.ID, escape(reply.Text))
	}
	if len(reply.Options) > 0 {
		return b.sendWithReplyMarkup(msg.Chat.ID, escape(reply.Text), optionsKeyboard(reply.Options))
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, escape(reply.Text), tgbotapi.NewRemoveKeyboard(true))
}

// SendDailyDigests sends a summary to every active user with open tasks.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	users, err := b.users.ListActive(ctx)
	if err != nil {
		return err
	}
	now := b.clock.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminders.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build digest for user %d: %v", user.ID, err)
			continue
		}
		if text == "" {
			continue
		}
		if err := b.sendText(user.ID, text); err != nil {
			log.Printf("send digest to %d: %v", user.ID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) error {
	if _, err := b.users.Ensure(ctx, from.ID, displayName(from)); err != nil {
		return fmt.Errorf("ensure user %d: %w", from.ID, err)
	}
	return nil
}

func (b *Bot) abandonDraft(userID int64) {
	if b.conversations.Abandon(userID) {
		log.Printf("[info] task draft abandoned user=%d", userID)
	}
}

// failure tells the user the current action failed and hands err back to
// the update loop.
func (b *Bot) failure(chatID int64, text string, err error) error {
	if sendErr := b.sendText(chatID, text); sendErr != nil {
		log.Printf("send failure notice to %d: %v", chatID, sendErr)
	}
	return err
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func displayName(from *tgbotapi.User) string {
	if from.UserName != "" {
		return from.UserName
	}
	return strings.TrimSpace(from.FirstName + " " + from.LastName)
}

func escape(s string) string {
	return html.EscapeString(s)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAddTask),
			tgbotapi.NewKeyboardButton(menuLabelCompleted),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelByCategory),
			tgbotapi.NewKeyboardButton(menuLabelMyTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDeleteTask),
			tgbotapi.NewKeyboardButton(menuLabelCompleteTask),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDisable),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func optionsKeyboard(options [][]string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, row := range options {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}
