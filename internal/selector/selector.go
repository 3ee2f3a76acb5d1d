// Package selector renders owner-scoped listings as pages of selectable
// controls and decodes the selections that come back.
package selector

import (
	"context"
	"fmt"
	"log"
)

// DefaultPageSize is used when a Selector has no PageSize.
const DefaultPageSize = 5

const (
	labelPrev = "⬅️ Back"
	labelNext = "➡️ Next"
)

// Control is one selectable button.
type Control struct {
	Label string
	Token Token
}

// Page is one rendered listing.
type Page struct {
	Action Action
	Index  int
	Items  []Control
	Prev   *Control
	Next   *Control
	// Columns is how many controls share a row.
	Columns int
}

// Empty reports whether there is nothing to show, not even navigation.
func (p Page) Empty() bool {
	return len(p.Items) == 0 && p.Prev == nil && p.Next == nil
}

// Controls lists items followed by the navigation controls.
func (p Page) Controls() []Control {
	out := append([]Control(nil), p.Items...)
	if p.Prev != nil {
		out = append(out, *p.Prev)
	}
	if p.Next != nil {
		out = append(out, *p.Next)
	}
	return out
}

// Rows groups Controls into rows of Columns.
func (p Page) Rows() [][]Control {
	cols := p.Columns
	if cols <= 0 {
		cols = 1
	}
	controls := p.Controls()
	rows := make([][]Control, 0, (len(controls)+cols-1)/cols)
	for start := 0; start < len(controls); start += cols {
		end := start + cols
		if end > len(controls) {
			end = len(controls)
		}
		rows = append(rows, controls[start:end])
	}
	return rows
}

// Outcome is what an effect did. Applied false means the selection was a
// silent no-op.
type Outcome struct {
	Applied bool
	Message string
}

// ResultKind classifies the result of Handle.
type ResultKind int

const (
	ResultIgnored ResultKind = iota
	ResultPage
	ResultApplied
)

// Result is the outcome of Handle.
type Result struct {
	Kind    ResultKind
	Page    Page
	Message string
}

// Handler is the type-erased view of a Selector.
type Handler interface {
	Action() Action
	Render(ctx context.Context, owner int64, page int) (Page, error)
	Handle(ctx context.Context, owner int64, tok Token) (Result, error)
}

// FetchFunc loads one page of owner's items in display order.
type FetchFunc[T any] func(ctx context.Context, owner int64, page, size int) ([]T, error)

// Selector binds a listing of T to an action.
type Selector[T any] struct {
	Tag      Action
	PageSize int
	Columns  int
	Fetch    FetchFunc[T]
	Label    func(T) string
	Ref      func(T) Token
	// Owns is checked before Apply; nil skips the check.
	Owns  func(ctx context.Context, owner int64, tok Token) (bool, error)
	Apply func(ctx context.Context, owner int64, tok Token) (Outcome, error)
}

func (s *Selector[T]) Action() Action {
	return s.Tag
}

func (s *Selector[T]) size() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// Render builds page index of owner's items. A next control is offered
// whenever the page is full, even if nothing follows it.
func (s *Selector[T]) Render(ctx context.Context, owner int64, index int) (Page, error) {
	size := s.size()
	items, err := s.Fetch(ctx, owner, index, size)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s page %d: %w", s.Tag, index, err)
	}

	page := Page{Action: s.Tag, Index: index, Columns: s.Columns}
	for _, item := range items {
		tok := s.Ref(item)
		raw := tok.String()
		if len(raw) > MaxTokenLength {
			log.Printf("[warn] %s control %q dropped: token too long", s.Tag, s.Label(item))
			continue
		}
		// A key such as "next_2" would come back as navigation.
		if parsed, err := ParseToken(raw); err != nil || parsed != tok {
			log.Printf("[warn] %s control %q dropped: token does not parse back", s.Tag, s.Label(item))
			continue
		}
		page.Items = append(page.Items, Control{Label: s.Label(item), Token: tok})
	}
	if index > 0 {
		page.Prev = &Control{Label: labelPrev, Token: Prev(s.Tag, index)}
	}
	if len(items) == size {
		page.Next = &Control{Label: labelNext, Token: Next(s.Tag, index)}
	}
	return page, nil
}

// Handle re-renders for navigation and runs the effect for a pick. Tokens for
// another action, pages before the first one and picks owner does not own
// are ignored without error.
func (s *Selector[T]) Handle(ctx context.Context, owner int64, tok Token) (Result, error) {
	if tok.Action != s.Tag {
		return Result{Kind: ResultIgnored}, nil
	}

	switch tok.Kind {
	case KindPrev, KindNext:
		index := tok.Page + 1
		if tok.Kind == KindPrev {
			index = tok.Page - 1
		}
		if index < 0 {
			return Result{Kind: ResultIgnored}, nil
		}
		page, err := s.Render(ctx, owner, index)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultPage, Page: page}, nil
	}

	if s.Owns != nil {
		ok, err := s.Owns(ctx, owner, tok)
		if err != nil {
			return Result{}, fmt.Errorf("check %s owner: %w", s.Tag, err)
		}
		if !ok {
			return Result{Kind: ResultIgnored}, nil
		}
	}
	out, err := s.Apply(ctx, owner, tok)
	if err != nil {
		return Result{}, fmt.Errorf("apply %s: %w", s.Tag, err)
	}
	if !out.Applied {
		return Result{Kind: ResultIgnored}, nil
	}
	return Result{Kind: ResultApplied, Message: out.Message}, nil
}
