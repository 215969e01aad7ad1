package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/metrics"
)

// Store mirrors a board to a backend under one key. Load never fails: a
// missing or unusable document yields the seed board. Save never fails
// either; write errors are logged and counted.
type Store struct {
	backend  Backend
	key      string
	logger   zerolog.Logger
	recorder metrics.Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		key:      DefaultKey,
		logger:   log.Logger,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("backend", backend.Name()).Str("key", s.key).Logger()
	return s
}

// Key is the storage key the board is mirrored under.
func (s *Store) Key() string { return s.key }

// Load returns the stored board, or the seed board when nothing valid is
// stored.
func (s *Store) Load(ctx context.Context) board.Board {
	b, err := s.LoadErr(ctx)
	if err == nil {
		s.recorder.Load(metrics.LoadStored)
		return b
	}

	switch {
	case errors.Is(err, ErrNotFound):
		s.recorder.Load(metrics.LoadMissing)
		s.logger.Info().Msg("No stored board, using default board")
	case errors.Is(err, errUnusable):
		s.recorder.Load(metrics.LoadInvalid)
		s.logger.Warn().Err(err).Msg("Stored board is invalid, using default board")
	default:
		s.recorder.Load(metrics.LoadReadFail)
		s.logger.Warn().Err(err).Msg("Failed to read stored board, using default board")
	}
	return board.Seed()
}

var errUnusable = errors.New("unusable board document")

// LoadErr is Load without the fallback. Unusable documents are reported as
// errors wrapping the parse, schema or validation failure.
func (s *Store) LoadErr(ctx context.Context) (board.Board, error) {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnusable, err)
	}
	return b, nil
}

// Save writes the board, logging instead of failing.
func (s *Store) Save(ctx context.Context, b board.Board) {
	if err := s.SaveErr(ctx, b); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist board")
	}
}

// SaveErr writes the board and reports failures to the caller.
func (s *Store) SaveErr(ctx context.Context, b board.Board) error {
	data, err := Encode(b)
	if err == nil {
		err = s.backend.Put(ctx, s.key, data)
	}
	s.recorder.Save(err == nil)
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	s.logger.Debug().Int("cards", b.CardCount()).Msg("Board persisted")
	return nil
}

// Encode serializes a board to its stored form.
func Encode(b board.Board) ([]byte, error) {
	data, err := json.Marshal(b.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return data, nil
}

// Decode parses a stored document and checks it against the board schema
// and the board invariants.
func Decode(data []byte) (board.Board, error) {
	if err := checkSchema(data); err != nil {
		return nil, err
	}
	var b board.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.Clone(), nil
}
