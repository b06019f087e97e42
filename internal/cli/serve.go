package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/randomtoy/memory-match/internal/adapters/content"
	httpadapter "github.com/randomtoy/memory-match/internal/adapters/http"
	"github.com/randomtoy/memory-match/internal/app"
	"github.com/randomtoy/memory-match/internal/config"
	"github.com/randomtoy/memory-match/internal/game"
	"github.com/randomtoy/memory-match/internal/score"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP",
		Long: `Serve the home screen and memory game sessions over HTTP.

Example:
  memoryd serve --addr :8080 --db ./memory.db
  NATS_URL=nats://localhost:4222 memoryd serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	return cmd
}

// services is the application layer wired to its adapters.
type services struct {
	games *app.GameService
	home  *app.HomeService
	close func()
}

func newServices(cfg config.Config, clk clock.Clock, logger *slog.Logger) (*services, error) {
	kv, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	pub, closePub, err := openPublisher(cfg, logger)
	if err != nil {
		closeStore()
		return nil, err
	}

	store := content.NewStore(contentFS(cfg))
	keeper := score.NewKeeper(kv, clk, logger)
	settings := app.GameSettings{
		SessionTTL: cfg.SessionTTL,
		Session: game.Config{
			Countdown:     cfg.Countdown,
			TimeLimit:     cfg.TimeLimit,
			MatchDelay:    cfg.MatchDelay,
			MismatchDelay: cfg.MismatchDelay,
			ToastTTL:      cfg.ToastTTL,
		},
	}

	return &services{
		games: app.NewGameService(store, keeper, pub, stdRNG{}, clk, settings, logger),
		home:  app.NewHomeService(store, clk, cfg.ToastTTL),
		close: func() {
			closePub()
			closeStore()
		},
	}, nil
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.Config
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}

	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	svc, err := newServices(cfg, clock.New(), logger)
	if err != nil {
		return err
	}
	defer svc.close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(svc.games, svc.home)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = svc.games.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		stop()
		<-runDone
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	<-runDone
	return nil
}
