package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gmllt/kanboard/internal/api"
	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/config"
	"github.com/gmllt/kanboard/internal/session"
	"github.com/gmllt/kanboard/internal/storage"
	"github.com/gmllt/kanboard/internal/tui"
)

type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config) error {
	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	b := a.session.Open(ctx)
	log.Info().Int("cards", b.CardCount()).Msg("Board loaded")

	addr := cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(a.session, api.Options{
			Metrics:   a.recorder.Handler(),
			StaticDir: cfg.Server.StaticDir,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Kanban server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Graceful shutdown failed")
		}
		a.session.Close(shutdownCtx)
	}
	return nil
}

type TUICmd struct{}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config) error {
	// The terminal belongs to the UI; logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := tui.Run(ctx, a.session); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	a.session.Close(context.WithoutCancel(ctx))
	return nil
}

type ShowCmd struct {
	JSON bool `help:"Print the stored JSON document"`
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config) error {
	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	b := a.session.Open(ctx)
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	printBoard(os.Stdout, b)
	return nil
}

type AddCmd struct {
	Column      string `arg:"" help:"Column id (todo, in-progress, done)"`
	Title       string `arg:"" help:"Card title"`
	Description string `short:"d" help:"Card description"`
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config) error {
	return oneShot(ctx, cfg, func(s *session.Session) error {
		if _, ok := s.Open(ctx).Column(c.Column); !ok {
			return fmt.Errorf("unknown column %q", c.Column)
		}
		_, card, err := s.AddCard(ctx, c.Column, c.Title, c.Description)
		if err != nil {
			return err
		}
		fmt.Println(card.ID)
		return nil
	})
}

type EditCmd struct {
	Column      string `arg:"" help:"Column id holding the card"`
	ID          string `arg:"" help:"Card id"`
	Title       string `arg:"" help:"New title"`
	Description string `short:"d" help:"New description"`
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config) error {
	return oneShot(ctx, cfg, func(s *session.Session) error {
		_, err := s.EditCard(ctx, c.Column, c.ID, c.Title, c.Description)
		return err
	})
}

type DeleteCmd struct {
	Column string `arg:"" help:"Column id holding the card"`
	ID     string `arg:"" help:"Card id"`
}

func (c *DeleteCmd) Run(ctx context.Context, cfg *config.Config) error {
	return oneShot(ctx, cfg, func(s *session.Session) error {
		s.DeleteCard(ctx, c.Column, c.ID)
		return nil
	})
}

type MoveCmd struct {
	ID   string `arg:"" help:"Card id"`
	From string `arg:"" help:"Source column id"`
	To   string `arg:"" help:"Target column id"`
}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config) error {
	return oneShot(ctx, cfg, func(s *session.Session) error {
		s.MoveCard(ctx, c.ID, c.From, c.To)
		return nil
	})
}

// strictAdapter keeps the store's load fallback but remembers write
// failures so one-shot commands can exit non-zero.
type strictAdapter struct {
	*storage.Store
	err error
}

func (s *strictAdapter) Save(ctx context.Context, b board.Board) {
	if err := s.SaveErr(ctx, b); err != nil {
		s.err = err
	}
}

func oneShot(ctx context.Context, cfg *config.Config, fn func(*session.Session) error) error {
	var strict *strictAdapter
	a, err := openApp(ctx, cfg, func(st *storage.Store) session.Adapter {
		strict = &strictAdapter{Store: st}
		return strict
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(a.session); err != nil {
		return err
	}
	return strict.err
}

func printBoard(w io.Writer, b board.Board) {
	for _, col := range b {
		fmt.Fprintf(w, "%s (%d)\n", col.Title, len(col.Cards))
		for _, card := range col.Cards {
			fmt.Fprintf(w, "  %s  %s\n", card.ID, card.Title)
			if d := strings.TrimSpace(card.Description); d != "" {
				fmt.Fprintf(w, "      %s\n", d)
			}
		}
	}
}
