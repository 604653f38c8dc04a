package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/database"
	"github.com/iliyamo/notestack/internal/logging"
	"github.com/iliyamo/notestack/internal/queue"
	"github.com/iliyamo/notestack/internal/repository"
	"github.com/iliyamo/notestack/internal/router"
	"github.com/iliyamo/notestack/internal/service"
	"github.com/iliyamo/notestack/internal/utils"
)

const appname = "notestack"

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.Env)
	displayAppname(appname)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable; list cache disabled")
	} else {
		defer rdb.Close()
	}

	var events service.BookmarkEvents
	if cfg.LinkPreview {
		events = queue.NewPublisher(cfg.AMQPURL)
	}

	signer := utils.NewTokenSigner(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	e := router.New(router.Deps{
		Cfg:       cfg,
		Cache:     cacheCfg,
		Redis:     rdb,
		Auth:      service.NewAuthService(repository.NewUserRepo(db), repository.NewSessionRepo(db), signer, cfg.BcryptCost),
		Notes:     service.NewNoteService(repository.NewNoteRepo(db)),
		Bookmarks: service.NewBookmarkService(repository.NewBookmarkRepo(db), events),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	waitForShutdown()
	if err := shutdown(server); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}

func waitForShutdown() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(name string) {
	figure.NewFigure(name, "cybermedium", true).Print()
	fmt.Println()
}
