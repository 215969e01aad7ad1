package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/config"
	"github.com/gmllt/kanboard/internal/metrics"
	"github.com/gmllt/kanboard/internal/session"
	"github.com/gmllt/kanboard/internal/storage"
)

// CLI is the command line definition.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path (.yml, .yaml or .toml)" default:"config.yml"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Serve the board over HTTP"`
	TUI    TUICmd    `cmd:"" name:"tui" help:"Open the board in the terminal"`
	Show   ShowCmd   `cmd:"" help:"Print the board"`
	Add    AddCmd    `cmd:"" help:"Add a card to a column"`
	Edit   EditCmd   `cmd:"" help:"Change a card's title and description"`
	Delete DeleteCmd `cmd:"" help:"Delete a card"`
	Move   MoveCmd   `cmd:"" help:"Move a card to another column"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("kanboard"),
		kong.Description("A three-column task board."),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg.Log, cli.Verbose, os.Stderr)

	if err := kctx.Run(cfg); err != nil {
		log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}

func setupLogging(cfg config.LogConfig, verbose bool, out io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
}

// app bundles the storage and session built from the configuration.
type app struct {
	backend  storage.Backend
	store    *storage.Store
	session  *session.Session
	recorder *metrics.PrometheusRecorder
}

func openApp(ctx context.Context, cfg *config.Config, wrap func(*storage.Store) session.Adapter) (*app, error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	recorder := metrics.NewPrometheusRecorder(nil)
	store := storage.NewStore(backend,
		storage.WithKey(cfg.Storage.Key),
		storage.WithRecorder(recorder),
	)

	var adapter session.Adapter = store
	if wrap != nil {
		adapter = wrap(store)
	}
	manager := board.NewManager(board.NewIDGenerator(cfg.Board.IDFormat))

	log.Debug().Str("backend", backend.Name()).Str("key", store.Key()).Msg("Storage ready")
	return &app{
		backend:  backend,
		store:    store,
		session:  session.New(adapter, manager, session.WithRecorder(recorder)),
		recorder: recorder,
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close storage")
	}
}
