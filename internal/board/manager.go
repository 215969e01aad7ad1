package board

import (
	"errors"
	"slices"
	"strings"
)

// ErrEmptyTitle rejects add and edit requests whose title is blank after
// trimming.
var ErrEmptyTitle = errors.New("card title is required")

// Manager applies card operations to boards. It owns only the id source;
// the board itself is passed in and a new board is returned.
type Manager struct {
	ids IDGenerator
}

func NewManager(ids IDGenerator) *Manager {
	if ids == nil {
		ids = NewClockGenerator()
	}
	return &Manager{ids: ids}
}

// AddCard appends a new card to the end of the column. An unknown column
// leaves the board unchanged and returns a zero Card.
func (m *Manager) AddCard(b Board, columnID, title, description string) (Board, Card, error) {
	if strings.TrimSpace(title) == "" {
		return b, Card{}, ErrEmptyTitle
	}
	ci := b.columnIndex(columnID)
	if ci < 0 {
		return b, Card{}, nil
	}

	card := Card{ID: m.uniqueID(b), Title: title, Description: description}
	out := b.replaceColumn(ci, append(slices.Clone(b[ci].Cards), card))
	return out, card, nil
}

// EditCard replaces the title and description of a card in place.
func (m *Manager) EditCard(b Board, columnID, cardID, title, description string) (Board, error) {
	if strings.TrimSpace(title) == "" {
		return b, ErrEmptyTitle
	}
	ci := b.columnIndex(columnID)
	if ci < 0 {
		return b, nil
	}
	ki := cardIndex(b[ci].Cards, cardID)
	if ki < 0 {
		return b, nil
	}

	cards := slices.Clone(b[ci].Cards)
	cards[ki].Title = title
	cards[ki].Description = description
	return b.replaceColumn(ci, cards), nil
}

// DeleteCard removes a card from a column. Absent cards are ignored.
func (m *Manager) DeleteCard(b Board, columnID, cardID string) Board {
	ci := b.columnIndex(columnID)
	if ci < 0 {
		return b
	}
	ki := cardIndex(b[ci].Cards, cardID)
	if ki < 0 {
		return b
	}
	return b.replaceColumn(ci, slices.Delete(slices.Clone(b[ci].Cards), ki, ki+1))
}

// MoveCard removes a card from the source column and appends it to the
// target column in the same transition. Same-column moves, unknown columns
// and cards missing from the source are no-ops.
func (m *Manager) MoveCard(b Board, cardID, sourceColumnID, targetColumnID string) Board {
	if sourceColumnID == targetColumnID {
		return b
	}
	si, ti := b.columnIndex(sourceColumnID), b.columnIndex(targetColumnID)
	if si < 0 || ti < 0 {
		return b
	}
	ki := cardIndex(b[si].Cards, cardID)
	if ki < 0 {
		return b
	}

	card := b[si].Cards[ki]
	out := b.replaceColumn(si, slices.Delete(slices.Clone(b[si].Cards), ki, ki+1))
	out[ti].Cards = append(slices.Clone(b[ti].Cards), card)
	return out
}

func (m *Manager) uniqueID(b Board) string {
	for {
		id := m.ids.NewID()
		if id != "" && !b.hasCard(id) {
			return id
		}
	}
}

// replaceColumn returns a shallow copy of b with column i's cards swapped.
// Untouched columns share their card slices with b.
func (b Board) replaceColumn(i int, cards []Card) Board {
	out := slices.Clone(b)
	out[i].Cards = cards
	return out
}
