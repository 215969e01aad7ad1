package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/modal"
	"github.com/gmllt/kanboard/internal/session"
)

type nopAdapter struct{}

func (nopAdapter) Load(context.Context) board.Board { return board.Seed() }
func (nopAdapter) Save(context.Context, board.Board) {}

func newModel(t *testing.T) *Model {
	t.Helper()
	m := New(context.Background(), session.New(nopAdapter{}, nil))
	require.Nil(t, m.Init())
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		if r == ' ' {
			press(m, "space")
			continue
		}
		press(m, string(r))
	}
}

func column(m *Model, id string) board.Column {
	col, _ := m.board.Column(id)
	return col
}

func TestAddCardThroughDialog(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "a")
	assert.Equal(t, modal.AddingTo{ColumnID: board.ColumnTodo}, m.dialog)
	assert.Contains(t, m.View(), "Add Task")

	typeText(m, "Write tests")
	press(m, "tab")
	typeText(m, "unit")
	press(m, "backspace", "enter")

	assert.False(t, modal.IsOpen(m.dialog))
	todo := column(m, board.ColumnTodo)
	require.Len(t, todo.Cards, 2)
	assert.Equal(t, "Write tests", todo.Cards[1].Title)
	assert.Equal(t, "uni", todo.Cards[1].Description)
}

func TestDialogRejectsBlankTitle(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "a", "space", "enter")

	assert.True(t, modal.IsOpen(m.dialog))
	assert.Equal(t, "Please enter a task name", m.status)
	assert.Contains(t, m.View(), "Please enter a task name")

	press(m, "esc")
	assert.False(t, modal.IsOpen(m.dialog))
	assert.Equal(t, board.Seed(), m.board)
}

func TestLettersInDialogDoNotTriggerCommands(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "a", "q", "d", "enter")
	todo := column(m, board.ColumnTodo)
	require.Len(t, todo.Cards, 2)
	assert.Equal(t, "qd", todo.Cards[1].Title)
}

func TestEditCard(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "right", "e")
	assert.Equal(t, modal.Editing{ColumnID: board.ColumnInProgress, CardID: "4"}, m.dialog)
	assert.Equal(t, "Implement authentication", m.form.Title)

	press(m, "backspace", "backspace", "backspace", "backspace", "backspace", "backspace", "backspace")
	typeText(m, "z")
	press(m, "enter")

	_, card, _ := m.board.FindCard("4")
	assert.Equal(t, "Implement authentz", card.Title)
	assert.Equal(t, "Add login and signup functionality with JWT", card.Description)
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "right", "right", "d")
	assert.Empty(t, column(m, board.ColumnDone).Cards)
	assert.Equal(t, 0, m.row)

	press(m, "d")
	assert.Equal(t, 2, m.board.CardCount())
}

func TestDragAndDrop(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "space")
	require.NotNil(t, m.drag)
	assert.Contains(t, m.View(), "Moving card 1")

	press(m, "right", "right", "space")
	assert.Nil(t, m.drag)
	assert.Empty(t, column(m, board.ColumnTodo).Cards)
	done := column(m, board.ColumnDone)
	require.Len(t, done.Cards, 2)
	assert.Equal(t, "1", done.Cards[1].ID)
	assert.Equal(t, 2, m.col)
	assert.Equal(t, 1, m.row)
}

func TestDropOnSameColumnIsNoop(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, "space", "space")
	assert.Nil(t, m.drag)
	assert.Equal(t, board.Seed(), m.board)
}

func TestShiftKeys(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	press(m, ">")
	assert.Len(t, column(m, board.ColumnInProgress).Cards, 2)
	assert.Equal(t, 1, m.col)

	press(m, "<", "<")
	assert.Len(t, column(m, board.ColumnTodo).Cards, 1)
	assert.Equal(t, 0, m.col)
	assert.Equal(t, 3, m.board.CardCount())
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestViewListsColumns(t *testing.T) {
	t.Parallel()

	view := newModel(t).View()
	for _, want := range []string{"[Todo (1)]", "In Progress (1)", "Done (1)", "> Create initial project plan"} {
		assert.Contains(t, view, want)
	}
}
