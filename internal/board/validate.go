package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBoard marks a board that breaks a structural invariant.
var ErrInvalidBoard = errors.New("invalid board")

// ValidationError points at the offending location in a board.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidBoard
}

// Validate checks that b has the fixed columns in order, that every card
// has an id and a non-blank title, and that no id appears twice.
func (b Board) Validate() error {
	want := ColumnIDs()
	if len(b) != len(want) {
		return &ValidationError{Err: fmt.Errorf("expected %d columns, got %d", len(want), len(b))}
	}

	seen := make(map[string]string)
	for i, col := range b {
		path := fmt.Sprintf("[%d]", i)
		if col.ID != want[i] {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("expected %q, got %q", want[i], col.ID)}
		}
		for j, card := range col.Cards {
			cpath := fmt.Sprintf("%s.cards[%d]", path, j)
			if card.ID == "" {
				return &ValidationError{Path: cpath + ".id", Err: errors.New("missing required field")}
			}
			if strings.TrimSpace(card.Title) == "" {
				return &ValidationError{Path: cpath + ".title", Err: errors.New("missing required field")}
			}
			if owner, dup := seen[card.ID]; dup {
				return &ValidationError{Path: cpath + ".id", Err: fmt.Errorf("duplicate id %q (also in %s)", card.ID, owner)}
			}
			seen[card.ID] = col.ID
		}
	}
	return nil
}
