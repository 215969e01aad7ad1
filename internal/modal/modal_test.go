package modal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/modal"
	"github.com/gmllt/kanboard/internal/session"
)

type nopAdapter struct{}

func (nopAdapter) Load(context.Context) board.Board { return board.Seed() }
func (nopAdapter) Save(context.Context, board.Board) {}

func TestSubmitAdd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := session.New(nopAdapter{}, nil)

	st, form := modal.OpenAdd(board.ColumnDone)
	assert.True(t, modal.IsOpen(st))
	assert.Equal(t, "Add Task", modal.Heading(st))
	assert.Equal(t, modal.Form{}, form)

	form.Title = "Ship it"
	next, err := modal.Submit(ctx, s, st, form)
	require.NoError(t, err)
	assert.Equal(t, modal.Closed{}, next)

	done, _ := s.Board(ctx).Column(board.ColumnDone)
	require.Len(t, done.Cards, 2)
	assert.Equal(t, "Ship it", done.Cards[1].Title)
}

func TestSubmitEdit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := session.New(nopAdapter{}, nil)
	_, card, _ := s.Open(ctx).FindCard("4")

	st, form := modal.OpenEdit(board.ColumnInProgress, card)
	assert.Equal(t, modal.Editing{ColumnID: board.ColumnInProgress, CardID: "4"}, st)
	assert.Equal(t, "Edit Task", modal.Heading(st))
	assert.Equal(t, card.Title, form.Title)
	assert.Equal(t, card.Description, form.Description)

	form.Description = "OAuth only"
	next, err := modal.Submit(ctx, s, st, form)
	require.NoError(t, err)
	assert.False(t, modal.IsOpen(next))

	_, got, _ := s.Board(ctx).FindCard("4")
	assert.Equal(t, "OAuth only", got.Description)
	assert.Equal(t, card.Title, got.Title)
}

func TestSubmitBlankTitleKeepsDialogOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := session.New(nopAdapter{}, nil)

	for _, st := range []modal.State{
		modal.AddingTo{ColumnID: board.ColumnTodo},
		modal.Editing{ColumnID: board.ColumnTodo, CardID: "1"},
	} {
		next, err := modal.Submit(ctx, s, st, modal.Form{Title: " ", Description: "x"})
		require.ErrorIs(t, err, board.ErrEmptyTitle)
		assert.Equal(t, st, next)
	}
	assert.Equal(t, board.Seed(), s.Board(ctx))
}

func TestSubmitClosed(t *testing.T) {
	t.Parallel()

	s := session.New(nopAdapter{}, nil)
	next, err := modal.Submit(context.Background(), s, modal.Closed{}, modal.Form{Title: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, modal.Closed{}, next)
	assert.False(t, modal.IsOpen(nil))
	assert.Empty(t, modal.Heading(modal.Closed{}))
	assert.Equal(t, board.Seed(), s.Board(context.Background()))
}
