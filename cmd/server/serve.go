package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog/migrations"
	"github.com/SexyZoe/AFL-Player-Guesser-sub000/game"
	"github.com/SexyZoe/AFL-Player-Guesser-sub000/logger"
	"github.com/SexyZoe/AFL-Player-Guesser-sub000/shortlink"
)

func newServeCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// newEngine builds the router with the origin allow-list in front of
// everything. Browsers that fail the check never reach the upgrade
// handler, which is why the websocket upgrader itself accepts any
// origin.
func newEngine(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		// Non-browser clients send no Origin header; let them through.
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func newProvider(ctx context.Context, cfg *Config, log zerolog.Logger) (catalog.Provider, func(), error) {
	if cfg.postgresURL == "" {
		log.Info().Msg("using embedded player catalog")
		mem, err := catalog.NewMemory()
		return mem, func() {}, err
	}

	if err := migrations.Migrate(cfg.postgresURL); err != nil {
		return nil, nil, err
	}
	repo, err := catalog.NewPostgresRepo(ctx, cfg.postgresURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("using postgres player catalog")
	return repo, repo.Close, nil
}

func serve(ctx context.Context, cfg *Config) error {
	log := logger.New(cfg.logLevel, cfg.prettyLogs)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, closeProvider, err := newProvider(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeProvider()

	hub := game.NewHub(log.With().Str("component", "hub").Logger(), provider, game.NewScheduler())
	go hub.Run(ctx)

	r := newEngine(cfg.allowedOrigins)
	game.NewHandler(hub, provider, log.With().Str("component", "http").Logger()).Register(r)
	shortlink.NewHandler(cfg.clientURL, log.With().Str("component", "shortlink").Logger()).Register(r)

	srv := &http.Server{
		Addr:    cfg.addr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
