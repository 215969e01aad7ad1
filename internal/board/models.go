// Package board holds the task board model and the pure state transitions
// applied to it.
package board

import "slices"

// Fixed column identities.
const (
	ColumnTodo       = "todo"
	ColumnInProgress = "in-progress"
	ColumnDone       = "done"
)

type Card struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// Board is the ordered set of columns. Treat it as immutable: every
// operation returns a fresh value and leaves its input untouched.
type Board []Column

// ColumnIDs lists the fixed column identities in display order.
func ColumnIDs() []string {
	return []string{ColumnTodo, ColumnInProgress, ColumnDone}
}

// Seed returns a new copy of the default board used when nothing valid
// has been persisted yet.
func Seed() Board {
	return Board{
		{
			ID:    ColumnTodo,
			Title: "Todo",
			Cards: []Card{
				{ID: "1", Title: "Create initial project plan", Description: "Draft the project timeline and milestones"},
			},
		},
		{
			ID:    ColumnInProgress,
			Title: "In Progress",
			Cards: []Card{
				{ID: "4", Title: "Implement authentication", Description: "Add login and signup functionality with JWT"},
			},
		},
		{
			ID:    ColumnDone,
			Title: "Done",
			Cards: []Card{
				{ID: "8", Title: "Write API documentation", Description: "Document all endpoints and response formats"},
			},
		},
	}
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, col := range b {
		out[i] = Column{ID: col.ID, Title: col.Title, Cards: slices.Clone(col.Cards)}
		if out[i].Cards == nil {
			out[i].Cards = []Card{}
		}
	}
	return out
}

// Column returns the column with the given id.
func (b Board) Column(id string) (Column, bool) {
	i := b.columnIndex(id)
	if i < 0 {
		return Column{}, false
	}
	return b[i], true
}

// FindCard locates a card anywhere on the board.
func (b Board) FindCard(cardID string) (columnID string, card Card, ok bool) {
	for _, col := range b {
		if i := cardIndex(col.Cards, cardID); i >= 0 {
			return col.ID, col.Cards[i], true
		}
	}
	return "", Card{}, false
}

// CardCount is the total number of cards across all columns.
func (b Board) CardCount() int {
	n := 0
	for _, col := range b {
		n += len(col.Cards)
	}
	return n
}

// Equal reports whether two boards hold the same columns and cards in the
// same order.
func (b Board) Equal(other Board) bool {
	return slices.EqualFunc(b, other, func(x, y Column) bool {
		return x.ID == y.ID && x.Title == y.Title && slices.Equal(x.Cards, y.Cards)
	})
}

func (b Board) hasCard(cardID string) bool {
	_, _, ok := b.FindCard(cardID)
	return ok
}

func (b Board) columnIndex(id string) int {
	return slices.IndexFunc(b, func(c Column) bool { return c.ID == id })
}

func cardIndex(cards []Card, id string) int {
	return slices.IndexFunc(cards, func(c Card) bool { return c.ID == id })
}
