// Package conversation drives the step-by-step creation of a task. Each
// user has at most one draft in memory; it lives until it is committed or
// abandoned.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"taskbot/internal/model"
	"taskbot/internal/service"
)

// Stage is the state of a user's draft.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingTitle
	StageAwaitingDescription
	StageAwaitingCategory
	StageAwaitingRecurrence
	StageCommitted
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaitingTitle:
		return "awaiting_title"
	case StageAwaitingDescription:
		return "awaiting_description"
	case StageAwaitingCategory:
		return "awaiting_category"
	case StageAwaitingRecurrence:
		return "awaiting_recurrence"
	case StageCommitted:
		return "committed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

const (
	promptTitle       = "Enter the task title:"
	promptDescription = "Enter the task description:"
	promptCategory    = "Choose the task category:"
	promptRecurrence  = "Choose how often the task repeats:"
)

// ErrNoSession is returned by Handle when the user has no draft.
var ErrNoSession = errors.New("no conversation in progress")

// Draft holds the answers collected so far.
type Draft struct {
	Title       string
	Description string
	Category    string
	Recurrence  string
}

type session struct {
	stage Stage
	draft Draft
}

// Reply is what to send back after a turn. Options, when present, are menu
// rows the user can tap instead of typing.
type Reply struct {
	Text      string
	Options   [][]string
	Committed *service.CreateResult
}

// TaskCreator persists a finished draft.
type TaskCreator interface {
	CreateTask(ctx context.Context, userID int64, input service.TaskInput) (*service.CreateResult, error)
}

// CategorySuggester lists the categories to offer a user.
type CategorySuggester interface {
	Suggestions(ctx context.Context, userID int64) ([]string, error)
}

// Engine keeps one draft per user.
type Engine struct {
	creator    TaskCreator
	categories CategorySuggester

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewEngine builds an Engine. categories may be nil, in which case only the
// fixed suggestions are offered.
func NewEngine(creator TaskCreator, categories CategorySuggester) *Engine {
	return &Engine{
		creator:    creator,
		categories: categories,
		sessions:   make(map[int64]*session),
	}
}

// Start opens a fresh draft for userID, dropping any previous one.
func (e *Engine) Start(userID int64) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[userID] = &session{stage: StageAwaitingTitle}
	return Reply{Text: promptTitle}
}

// Active reports whether userID has a draft in progress.
func (e *Engine) Active(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[userID]
	return ok
}

// Stage returns the stage of userID's draft, StageIdle when there is none.
func (e *Engine) Stage(userID int64) Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[userID]; ok {
		return s.stage
	}
	return StageIdle
}

// Abandon drops userID's draft and reports whether there was one.
func (e *Engine) Abandon(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[userID]
	delete(e.sessions, userID)
	return ok
}

// Handle stores text as the answer to the current step and returns the next
// prompt. The recurrence answer commits the draft; the draft is gone after
// that whether the commit worked or not. Text is stored as typed; a message
// without text, such as a sticker, repeats the prompt.
func (e *Engine) Handle(ctx context.Context, userID int64, text string) (Reply, error) {
	e.mu.Lock()
	s, ok := e.sessions[userID]
	var current session
	if ok {
		current = *s
	}
	e.mu.Unlock()
	if !ok {
		return Reply{}, ErrNoSession
	}

	if text == "" {
		return e.prompt(ctx, userID, current.stage), nil
	}

	next := current
	switch current.stage {
	case StageAwaitingTitle:
		next.draft.Title = text
		next.stage = StageAwaitingDescription
	case StageAwaitingDescription:
		next.draft.Description = text
		next.stage = StageAwaitingCategory
	case StageAwaitingCategory:
		next.draft.Category = text
		next.stage = StageAwaitingRecurrence
	case StageAwaitingRecurrence:
		next.draft.Recurrence = text
		next.stage = StageCommitted
		return e.commit(ctx, userID, next.draft)
	default:
		e.Abandon(userID)
		return Reply{}, fmt.Errorf("draft of user %d in stage %s", userID, current.stage)
	}

	if !e.replace(userID, s, next) {
		// Abandoned or restarted while this turn ran.
		return Reply{}, ErrNoSession
	}
	return e.prompt(ctx, userID, next.stage), nil
}

func (e *Engine) replace(userID int64, old *session, next session) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessions[userID] != old {
		return false
	}
	*old = next
	return true
}

func (e *Engine) commit(ctx context.Context, userID int64, draft Draft) (Reply, error) {
	e.Abandon(userID)

	res, err := e.creator.CreateTask(ctx, userID, service.TaskInput{
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Recurrence:  draft.Recurrence,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("commit draft: %w", err)
	}

	log.Printf("[info] task created id=%d user=%d recurrence=%q", res.Task.ID, userID, draft.Recurrence)
	return Reply{
		Text:      fmt.Sprintf("Task added! Recurrence: %s", draft.Recurrence),
		Committed: res,
	}, nil
}

func (e *Engine) prompt(ctx context.Context, userID int64, stage Stage) Reply {
	switch stage {
	case StageAwaitingTitle:
		return Reply{Text: promptTitle}
	case StageAwaitingDescription:
		return Reply{Text: promptDescription}
	case StageAwaitingCategory:
		return Reply{Text: promptCategory, Options: column(e.suggestions(ctx, userID))}
	case StageAwaitingRecurrence:
		return Reply{Text: promptRecurrence, Options: column(model.RecurrenceChoices)}
	default:
		return Reply{}
	}
}

func (e *Engine) suggestions(ctx context.Context, userID int64) []string {
	if e.categories == nil {
		return model.SuggestedCategories
	}
	names, err := e.categories.Suggestions(ctx, userID)
	if err != nil {
		log.Printf("category suggestions for %d: %v", userID, err)
		return model.SuggestedCategories
	}
	return names
}

func column(values []string) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v})
	}
	return rows
}
