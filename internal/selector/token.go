package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Action is the leading part of a callback token.
type Action string

const (
	ActionDelete    Action = "delete"
	ActionComplete  Action = "complete"
	ActionCategory  Action = "category"
	ActionCompleted Action = "completed"
)

// MaxTokenLength is Telegram's limit on callback data.
const MaxTokenLength = 64

const dateLayout = "2006-01-02"

// ErrMalformedToken is returned for callback data outside the grammar.
var ErrMalformedToken = errors.New("malformed selection token")

// Kind distinguishes an item pick from page navigation.
type Kind int

const (
	KindSelect Kind = iota
	KindPrev
	KindNext
)

// Token is a decoded selection:
//
//	ACTION "_" KEY | ACTION "_prev_" PAGE | ACTION "_next_" PAGE
//
// KEY is a task id for delete and complete, a YYYY-MM-DD date for completed
// and a category name for category.
type Token struct {
	Action Action
	Kind   Kind
	Key    string
	// ID is Key parsed, set for delete and complete.
	ID   uint
	Page int
}

func Select(action Action, key string) Token {
	return Token{Action: action, Kind: KindSelect, Key: key}
}

func SelectID(action Action, id uint) Token {
	return Token{Action: action, Kind: KindSelect, Key: strconv.FormatUint(uint64(id), 10), ID: id}
}

func Prev(action Action, page int) Token {
	return Token{Action: action, Kind: KindPrev, Page: page}
}

func Next(action Action, page int) Token {
	return Token{Action: action, Kind: KindNext, Page: page}
}

func (t Token) String() string {
	switch t.Kind {
	case KindPrev:
		return fmt.Sprintf("%s_prev_%d", t.Action, t.Page)
	case KindNext:
		return fmt.Sprintf("%s_next_%d", t.Action, t.Page)
	default:
		return fmt.Sprintf("%s_%s", t.Action, t.Key)
	}
}

// ParseToken decodes callback data. Anything it cannot place in the grammar
// yields ErrMalformedToken.
func ParseToken(raw string) (Token, error) {
	name, rest, ok := strings.Cut(raw, "_")
	if !ok || rest == "" {
		return Token{}, ErrMalformedToken
	}
	action := Action(name)
	switch action {
	case ActionDelete, ActionComplete, ActionCategory, ActionCompleted:
	default:
		return Token{}, ErrMalformedToken
	}

	if page, ok := strings.CutPrefix(rest, "prev_"); ok {
		n, err := parsePage(page)
		if err != nil {
			return Token{}, err
		}
		return Prev(action, n), nil
	}
	if page, ok := strings.CutPrefix(rest, "next_"); ok {
		n, err := parsePage(page)
		if err != nil {
			return Token{}, err
		}
		return Next(action, n), nil
	}

	switch action {
	case ActionDelete, ActionComplete:
		id, err := strconv.ParseUint(rest, 10, 64)
		if err != nil || id == 0 {
			return Token{}, ErrMalformedToken
		}
		return SelectID(action, uint(id)), nil
	case ActionCompleted:
		if _, err := time.Parse(dateLayout, rest); err != nil {
			return Token{}, ErrMalformedToken
		}
	}
	return Select(action, rest), nil
}

func parsePage(raw string) (int, error) {
	n, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		return 0, ErrMalformedToken
	}
	return int(n), nil
}
