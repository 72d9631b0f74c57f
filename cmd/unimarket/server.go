package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/adapters"
	"gitlab.com/ranfdev/unimarket/internal/db"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
	"gitlab.com/ranfdev/unimarket/internal/ratelimit"
	"gitlab.com/ranfdev/unimarket/internal/routes"
)

type UnimarketServer struct {
	models.EnvConfig
	addr       string
	logger     zerolog.Logger
	clock      clock.Clock
	router     chi.Router
	httpServer *http.Server
	database   *pgxpool.Pool
	limiters   routes.Limiters
}

func (server *UnimarketServer) setupLogger() {
	var writer io.Writer
	if server.Debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	} else {
		writer = os.Stdout
	}
	log := zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if server.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	server.logger = log
}
func (server *UnimarketServer) setupDB(ctx context.Context) {
	err := db.MigrateUp(server.DatabaseURL)
	if err != nil {
		server.logger.Fatal().Err(err).Send()
	}
	pool, err := db.Connect(ctx, &server.EnvConfig)
	if err != nil {
		server.logger.Fatal().AnErr("Connecting to db", err).Send()
	}
	server.database = pool
}
func (server *UnimarketServer) setupLimiters() {
	server.limiters = routes.Limiters{
		Reports: ratelimit.New(server.ReportsPerMinute, time.Minute, server.clock),
		Checks:  ratelimit.New(server.ChecksPerMinute, time.Minute, server.clock),
	}
}
func (server *UnimarketServer) setupRouter() {
	repos := adapters.NewRepos(server.database)
	log := server.logger
	services := routes.Services{
		Moderator:     domain.NewModerator(repos, moderation.NewEngine(repos.Rules, log), log),
		Reports:       domain.NewReportAggregator(repos, log, server.NotifyOnReports),
		Queue:         domain.NewFlagQueue(repos, server.clock, log),
		Rules:         domain.NewRuleAdmin(repos, log),
		Users:         domain.NewUserAdmin(repos, server.clock, log),
		Notifications: domain.NewNotificationService(repos),
		UserRepo:      repos.Users,
	}
	server.router = routes.NewRouter(&server.EnvConfig, services, server.limiters, log)
}
func (server *UnimarketServer) setupHttpServer() {
	server.addr = fmt.Sprintf(":%s", server.EnvConfig.Port)
	server.httpServer = &http.Server{
		Addr:         server.addr,
		Handler:      server.router,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
	}
}
func (server *UnimarketServer) Setup(ctx context.Context) {
	server.clock = clock.New()
	server.setupLogger()
	if len(server.JWTSecret) == 0 {
		server.logger.Fatal().Msg("UNIMARKET_JWT_SECRET is required")
	}
	server.setupDB(ctx)
	server.setupLimiters()
	server.setupRouter()
	server.setupHttpServer()
}
func (server *UnimarketServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.httpServer.Shutdown(ctx); err != nil {
		server.logger.Error().
			Err(err).
			Msg("Error shutting down")
	}
	server.database.Close()
}
func (server *UnimarketServer) Run(ctx context.Context) {
	server.logger.Info().Str("server_address", server.addr).Msg("Server is starting")
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go server.limiters.Reports.Run(ctx, server.RateLimitSweep)
	go server.limiters.Checks.Run(ctx, server.RateLimitSweep)
	go func() {
		err := server.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			server.logger.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()
	server.logger.Info().Msg("Ready")

	<-ctx.Done()
	stop() // Stop listening for signals
	server.logger.Info().Msg("Shutting down gracefully")
	server.Shutdown()
}
