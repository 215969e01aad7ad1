// Package session owns the live board for one running process: it seeds
// the board from storage once, applies card operations, and mirrors every
// change back to storage.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/metrics"
)

// Adapter loads and persists boards. Load must always return a usable
// board and Save must absorb its own failures.
type Adapter interface {
	Load(ctx context.Context) board.Board
	Save(ctx context.Context, b board.Board)
}

// Operation names.
const (
	OpAdd    = "add"
	OpEdit   = "edit"
	OpDelete = "delete"
	OpMove   = "move"
)

type Session struct {
	mu       sync.Mutex
	adapter  Adapter
	manager  *board.Manager
	recorder metrics.Recorder
	current  board.Board
	loaded   bool
}

type Option func(*Session)

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

func New(adapter Adapter, manager *board.Manager, opts ...Option) *Session {
	if manager == nil {
		manager = board.NewManager(nil)
	}
	s := &Session{
		adapter:  adapter,
		manager:  manager,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open seeds the session from the adapter. Only the first call loads;
// later calls return the current board.
func (s *Session) Open(ctx context.Context) board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.current.Clone()
}

// Board returns a copy of the current board.
func (s *Session) Board(ctx context.Context) board.Board {
	return s.Open(ctx)
}

// AddCard appends a card to a column. It returns board.ErrEmptyTitle when
// the title is blank.
func (s *Session) AddCard(ctx context.Context, columnID, title, description string) (board.Board, board.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	next, card, err := s.manager.AddCard(s.current, columnID, title, description)
	if err != nil {
		s.recorder.Operation(OpAdd, metrics.ResultRejected)
		return s.current.Clone(), board.Card{}, err
	}
	return s.commit(ctx, OpAdd, next), card, nil
}

func (s *Session) EditCard(ctx context.Context, columnID, cardID, title, description string) (board.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	next, err := s.manager.EditCard(s.current, columnID, cardID, title, description)
	if err != nil {
		s.recorder.Operation(OpEdit, metrics.ResultRejected)
		return s.current.Clone(), err
	}
	return s.commit(ctx, OpEdit, next), nil
}

func (s *Session) DeleteCard(ctx context.Context, columnID, cardID string) board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	return s.commit(ctx, OpDelete, s.manager.DeleteCard(s.current, columnID, cardID))
}

func (s *Session) MoveCard(ctx context.Context, cardID, sourceColumnID, targetColumnID string) board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	return s.commit(ctx, OpMove, s.manager.MoveCard(s.current, cardID, sourceColumnID, targetColumnID))
}

// Close performs the final write of the current board.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		s.adapter.Save(context.WithoutCancel(ctx), s.current.Clone())
	}
}

func (s *Session) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	// A cancelled load would fall back to the seed and the next save would
	// overwrite the stored board with it.
	s.current = s.adapter.Load(context.WithoutCancel(ctx))
	s.loaded = true
	log.Debug().Int("cards", s.current.CardCount()).Msg("Board loaded")
}

// commit replaces the current board with next and persists it, unless the
// operation changed nothing. The write outlives the caller's cancellation;
// backends bound it with their own timeouts.
func (s *Session) commit(ctx context.Context, op string, next board.Board) board.Board {
	if next.Equal(s.current) {
		s.recorder.Operation(op, metrics.ResultNoop)
		log.Debug().Str("op", op).Msg("Board unchanged")
		return s.current.Clone()
	}
	s.current = next
	s.recorder.Operation(op, metrics.ResultApplied)
	s.adapter.Save(context.WithoutCancel(ctx), next.Clone())
	return next.Clone()
}
