// Package tui is a terminal front end for the board: three columns, a
// cursor, a card dialog and keyboard drag and drop.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/modal"
	"github.com/gmllt/kanboard/internal/session"
)

const columnWidth = 30

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, s *session.Session) error {
	program := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// dragged is the card picked up for a move.
type dragged struct {
	cardID       string
	fromColumnID string
}

type Model struct {
	ctx     context.Context
	session *session.Session
	board   board.Board

	col, row int
	drag     *dragged

	dialog modal.State
	form   modal.Form
	field  int // 0 title, 1 description

	status   string
	showHelp bool
}

func New(ctx context.Context, s *session.Session) *Model {
	return &Model{
		ctx:     ctx,
		session: s,
		board:   s.Open(ctx),
		dialog:  modal.Closed{},
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if modal.IsOpen(m.dialog) {
		m.updateDialog(key)
		return m, nil
	}
	return m, m.updateBoard(key)
}

func (m *Model) updateBoard(key tea.KeyMsg) tea.Cmd {
	m.status = ""
	switch key.String() {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "left", "h":
		m.focusColumn(m.col - 1)
	case "right", "l":
		m.focusColumn(m.col + 1)
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.currentColumn().Cards)-1 {
			m.row++
		}
	case "a":
		m.dialog, m.form = modal.OpenAdd(m.currentColumn().ID)
		m.field = 0
	case "e", "enter":
		if card, ok := m.selected(); ok {
			m.dialog, m.form = modal.OpenEdit(m.currentColumn().ID, card)
			m.field = 0
		}
	case "d", "x":
		if card, ok := m.selected(); ok {
			m.board = m.session.DeleteCard(m.ctx, m.currentColumn().ID, card.ID)
			m.clampRow()
		}
	case " ":
		m.toggleDrag()
	case "esc":
		m.drag = nil
	case "<", ",":
		m.shift(-1)
	case ">", ".":
		m.shift(1)
	}
	return nil
}

func (m *Model) updateDialog(key tea.KeyMsg) {
	switch key.Type {
	case tea.KeyEsc:
		m.closeDialog()
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.field = 1 - m.field
	case tea.KeyEnter:
		if _, err := modal.Submit(m.ctx, m.session, m.dialog, m.form); errors.Is(err, board.ErrEmptyTitle) {
			m.status = "Please enter a task name"
			return
		}
		m.closeDialog()
		m.board = m.session.Board(m.ctx)
		m.clampRow()
	case tea.KeyBackspace:
		f := m.activeField()
		if r := []rune(*f); len(r) > 0 {
			*f = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		*m.activeField() += " "
	case tea.KeyRunes:
		*m.activeField() += string(key.Runes)
	}
}

func (m *Model) closeDialog() {
	m.dialog = modal.Closed{}
	m.form = modal.Form{}
	m.field = 0
	m.status = ""
}

func (m *Model) activeField() *string {
	if m.field == 1 {
		return &m.form.Description
	}
	return &m.form.Title
}

// toggleDrag picks up the selected card, or drops the carried card onto
// the focused column.
func (m *Model) toggleDrag() {
	if m.drag == nil {
		if card, ok := m.selected(); ok {
			m.drag = &dragged{cardID: card.ID, fromColumnID: m.currentColumn().ID}
		}
		return
	}
	d := m.drag
	m.drag = nil
	m.board = m.session.MoveCard(m.ctx, d.cardID, d.fromColumnID, m.currentColumn().ID)
	m.selectCard(d.cardID)
}

// shift moves the selected card to the neighbouring column and follows it.
func (m *Model) shift(delta int) {
	card, ok := m.selected()
	target := m.col + delta
	if !ok || target < 0 || target >= len(m.board) {
		return
	}
	m.board = m.session.MoveCard(m.ctx, card.ID, m.currentColumn().ID, m.board[target].ID)
	m.selectCard(card.ID)
}

func (m *Model) selectCard(cardID string) {
	for ci, col := range m.board {
		for ri, c := range col.Cards {
			if c.ID == cardID {
				m.col, m.row = ci, ri
				return
			}
		}
	}
	m.clampRow()
}

func (m *Model) focusColumn(i int) {
	if i < 0 || i >= len(m.board) {
		return
	}
	m.col = i
	m.clampRow()
}

func (m *Model) clampRow() {
	n := len(m.currentColumn().Cards)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) currentColumn() board.Column {
	if m.col < 0 || m.col >= len(m.board) {
		return board.Column{}
	}
	return m.board[m.col]
}

func (m *Model) selected() (board.Card, bool) {
	cards := m.currentColumn().Cards
	if m.row < 0 || m.row >= len(cards) {
		return board.Card{}, false
	}
	return cards[m.row], true
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString("Kanban Board\n\n")

	blocks := make([][]string, len(m.board))
	height := 0
	for i, col := range m.board {
		blocks[i] = m.renderColumn(i, col)
		height = max(height, len(blocks[i]))
	}
	for line := range height {
		for _, block := range blocks {
			cell := ""
			if line < len(block) {
				cell = block[line]
			}
			b.WriteString(pad(cell, columnWidth))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	if m.drag != nil {
		fmt.Fprintf(&b, "\nMoving card %s from %s (space to drop, esc to cancel)\n", m.drag.cardID, m.drag.fromColumnID)
	}
	if modal.IsOpen(m.dialog) {
		b.WriteString(m.renderDialog())
	}
	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	if m.showHelp {
		b.WriteString("\n←/→ column  ↑/↓ card  a add  e edit  d delete  space pick/drop  </> move  q quit\n")
	} else {
		b.WriteString("\n? help\n")
	}
	return b.String()
}

func (m *Model) renderColumn(i int, col board.Column) []string {
	header := fmt.Sprintf("%s (%d)", col.Title, len(col.Cards))
	if i == m.col {
		header = "[" + header + "]"
	}
	lines := []string{header, strings.Repeat("─", columnWidth)}
	for ri, card := range col.Cards {
		marker := "  "
		if i == m.col && ri == m.row {
			marker = "> "
		}
		if m.drag != nil && m.drag.cardID == card.ID {
			marker = "* "
		}
		lines = append(lines, marker+truncate(card.Title, columnWidth-2))
		if card.Description != "" {
			lines = append(lines, "    "+truncate(card.Description, columnWidth-4))
		}
	}
	return lines
}

func (m *Model) renderDialog() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", modal.Heading(m.dialog))
	cursor := [2]string{" ", " "}
	cursor[m.field] = ">"
	fmt.Fprintf(&b, "%s Title:       %s\n", cursor[0], m.form.Title)
	fmt.Fprintf(&b, "%s Description: %s\n", cursor[1], m.form.Description)
	b.WriteString("enter save  tab switch field  esc cancel\n")
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
