package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type item struct {
	id    uint
	owner int64
	title string
}

// fakeItems serves fixed items newest first, the way the task store does.
type fakeItems struct {
	items   []item
	applied []Token
	err     error
}

func (f *fakeItems) fetch(_ context.Context, owner int64, page, size int) ([]item, error) {
	if f.err != nil {
		return nil, f.err
	}
	var mine []item
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].owner == owner {
			mine = append(mine, f.items[i])
		}
	}
	start := page * size
	if start >= len(mine) {
		return nil, nil
	}
	end := start + size
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], nil
}

func (f *fakeItems) owns(_ context.Context, owner int64, tok Token) (bool, error) {
	for _, it := range f.items {
		if it.id == tok.ID {
			return it.owner == owner, nil
		}
	}
	return false, nil
}

func (f *fakeItems) selector() *Selector[item] {
	return &Selector[item]{
		Tag:   ActionDelete,
		Fetch: f.fetch,
		Label: func(it item) string { return it.title },
		Ref:   func(it item) Token { return SelectID(ActionDelete, it.id) },
		Owns:  f.owns,
		Apply: func(_ context.Context, _ int64, tok Token) (Outcome, error) {
			f.applied = append(f.applied, tok)
			return Outcome{Applied: true, Message: "done"}, nil
		},
	}
}

func seed(owner int64, n int) []item {
	items := make([]item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, item{id: uint(i), owner: owner, title: fmt.Sprintf("task %d", i)})
	}
	return items
}

func TestRenderSevenItems(t *testing.T) {
	ctx := context.Background()
	f := &fakeItems{items: seed(1, 7)}
	sel := f.selector()

	first, err := sel.Render(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, first.Items, 5)
	assert.Equal(t, "delete_7", first.Items[0].Token.String())
	assert.Nil(t, first.Prev)
	require.NotNil(t, first.Next)
	assert.Equal(t, "delete_next_0", first.Next.Token.String())

	res, err := sel.Handle(ctx, 1, first.Next.Token)
	require.NoError(t, err)
	require.Equal(t, ResultPage, res.Kind)
	second := res.Page
	assert.Equal(t, 1, second.Index)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "delete_2", second.Items[0].Token.String())
	assert.Equal(t, "delete_1", second.Items[1].Token.String())
	require.NotNil(t, second.Prev)
	assert.Equal(t, "delete_prev_1", second.Prev.Token.String())
	assert.Nil(t, second.Next)

	res, err = sel.Handle(ctx, 1, second.Prev.Token)
	require.NoError(t, err)
	require.Equal(t, ResultPage, res.Kind)
	assert.Equal(t, first, res.Page)
}

func TestRenderFullLastPageOffersDeadNext(t *testing.T) {
	ctx := context.Background()
	f := &fakeItems{items: seed(1, 5)}
	sel := f.selector()

	first, err := sel.Render(ctx, 1, 0)
	require.NoError(t, err)
	require.NotNil(t, first.Next)

	res, err := sel.Handle(ctx, 1, first.Next.Token)
	require.NoError(t, err)
	assert.Empty(t, res.Page.Items)
	assert.NotNil(t, res.Page.Prev)
	assert.Nil(t, res.Page.Next)
	assert.False(t, res.Page.Empty())
}

func TestRenderEmpty(t *testing.T) {
	f := &fakeItems{}
	page, err := f.selector().Render(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.True(t, page.Empty())
	assert.Empty(t, page.Rows())
}

func TestHandleAppliesOwnedSelection(t *testing.T) {
	f := &fakeItems{items: seed(1, 3)}

	res, err := f.selector().Handle(context.Background(), 1, SelectID(ActionDelete, 2))
	require.NoError(t, err)
	assert.Equal(t, Result{Kind: ResultApplied, Message: "done"}, res)
	assert.Equal(t, []Token{SelectID(ActionDelete, 2)}, f.applied)
}

func TestHandleIgnoresForeignSelection(t *testing.T) {
	f := &fakeItems{items: append(seed(1, 2), item{id: 9, owner: 2, title: "theirs"})}

	res, err := f.selector().Handle(context.Background(), 1, SelectID(ActionDelete, 9))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res.Kind)
	assert.Empty(t, f.applied)
}

func TestHandleIgnoresOtherActionsAndNegativePages(t *testing.T) {
	f := &fakeItems{items: seed(1, 3)}
	sel := f.selector()

	res, err := sel.Handle(context.Background(), 1, SelectID(ActionComplete, 1))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res.Kind)

	res, err = sel.Handle(context.Background(), 1, Prev(ActionDelete, 0))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res.Kind)
	assert.Empty(t, f.applied)
}

func TestHandlePropagatesFetchFailure(t *testing.T) {
	boom := errors.New("db down")
	f := &fakeItems{err: boom}

	_, err := f.selector().Handle(context.Background(), 1, Next(ActionDelete, 0))
	assert.ErrorIs(t, err, boom)
}

func TestHandleNotAppliedIsIgnored(t *testing.T) {
	sel := &Selector[item]{
		Tag: ActionComplete,
		Apply: func(context.Context, int64, Token) (Outcome, error) {
			return Outcome{}, nil
		},
	}
	res, err := sel.Handle(context.Background(), 1, SelectID(ActionComplete, 3))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res.Kind)
}

func TestRenderDropsOversizedTokens(t *testing.T) {
	long := strings.Repeat("x", MaxTokenLength)
	sel := &Selector[string]{
		Tag: ActionCategory,
		Fetch: func(context.Context, int64, int, int) ([]string, error) {
			return []string{"Work", long}, nil
		},
		Label: func(s string) string { return s },
		Ref:   func(s string) Token { return Select(ActionCategory, s) },
	}
	page, err := sel.Render(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "category_Work", page.Items[0].Token.String())
}

func TestRenderDropsKeysReadAsNavigation(t *testing.T) {
	sel := &Selector[string]{
		Tag: ActionCategory,
		Fetch: func(context.Context, int64, int, int) ([]string, error) {
			return []string{"next_2", "prev_0", "my_stuff", "next_time"}, nil
		},
		Label: func(s string) string { return s },
		Ref:   func(s string) Token { return Select(ActionCategory, s) },
	}
	page, err := sel.Render(context.Background(), 1, 0)
	require.NoError(t, err)
	var keys []string
	for _, c := range page.Items {
		keys = append(keys, c.Token.Key)
	}
	assert.Equal(t, []string{"my_stuff"}, keys)
}

func TestRows(t *testing.T) {
	page := Page{
		Columns: 2,
		Items: []Control{
			{Label: "a"}, {Label: "b"}, {Label: "c"},
		},
		Prev: &Control{Label: "prev"},
		Next: &Control{Label: "next"},
	}
	rows := page.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []Control{{Label: "a"}, {Label: "b"}}, rows[0])
	assert.Equal(t, []Control{{Label: "c"}, {Label: "prev"}}, rows[1])
	assert.Equal(t, []Control{{Label: "next"}}, rows[2])

	page.Columns = 0
	assert.Len(t, page.Rows(), 5)
}

func TestPaginationEnumeratesEverything(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "items")
		size := rapid.IntRange(1, 7).Draw(rt, "page_size")
		f := &fakeItems{items: append(seed(1, n), item{id: 1000, owner: 2, title: "foreign"})}
		sel := f.selector()
		sel.PageSize = size
		ctx := context.Background()

		page, err := sel.Render(ctx, 1, 0)
		if err != nil {
			rt.Fatalf("render: %v", err)
		}
		var seen []uint
		for steps := 0; ; steps++ {
			if steps > n+1 {
				rt.Fatalf("pagination did not terminate")
			}
			for _, c := range page.Items {
				seen = append(seen, c.Token.ID)
			}
			if page.Next == nil {
				break
			}
			res, err := sel.Handle(ctx, 1, page.Next.Token)
			if err != nil {
				rt.Fatalf("next: %v", err)
			}
			page = res.Page
		}

		if len(seen) != n {
			rt.Fatalf("saw %d items, want %d", len(seen), n)
		}
		for i, id := range seen {
			if want := uint(n - i); id != want {
				rt.Fatalf("item %d = %d, want %d (newest first)", i, id, want)
			}
		}
	})
}
