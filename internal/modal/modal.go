// Package modal models the card form dialog: which mode it is in, what it
// targets, and how a submitted form is applied.
package modal

import (
	"context"

	"github.com/gmllt/kanboard/internal/board"
)

// State is one of Closed, AddingTo or Editing.
type State interface {
	isState()
}

type Closed struct{}

// AddingTo collects a new card for a column.
type AddingTo struct {
	ColumnID string
}

// Editing changes an existing card.
type Editing struct {
	ColumnID string
	CardID   string
}

func (Closed) isState()   {}
func (AddingTo) isState() {}
func (Editing) isState()  {}

// Form is the text the user typed.
type Form struct {
	Title       string
	Description string
}

// Editor applies submitted forms.
type Editor interface {
	AddCard(ctx context.Context, columnID, title, description string) (board.Board, board.Card, error)
	EditCard(ctx context.Context, columnID, cardID, title, description string) (board.Board, error)
}

// OpenAdd starts an empty add form for a column.
func OpenAdd(columnID string) (State, Form) {
	return AddingTo{ColumnID: columnID}, Form{}
}

// OpenEdit starts an edit form prefilled with the card's fields.
func OpenEdit(columnID string, card board.Card) (State, Form) {
	return Editing{ColumnID: columnID, CardID: card.ID}, Form{Title: card.Title, Description: card.Description}
}

// IsOpen reports whether st shows a dialog.
func IsOpen(st State) bool {
	switch st.(type) {
	case AddingTo, Editing:
		return true
	default:
		return false
	}
}

// Heading is the dialog title for st.
func Heading(st State) string {
	switch st.(type) {
	case AddingTo:
		return "Add Task"
	case Editing:
		return "Edit Task"
	default:
		return ""
	}
}

// Submit applies the form and returns the next dialog state. On success the
// dialog closes. A blank title keeps the dialog open and returns
// board.ErrEmptyTitle so the caller can prompt again.
func Submit(ctx context.Context, e Editor, st State, f Form) (State, error) {
	var err error
	switch st := st.(type) {
	case AddingTo:
		_, _, err = e.AddCard(ctx, st.ColumnID, f.Title, f.Description)
	case Editing:
		_, err = e.EditCard(ctx, st.ColumnID, st.CardID, f.Title, f.Description)
	default:
		return Closed{}, nil
	}
	if err != nil {
		return st, err
	}
	return Closed{}, nil
}
