// Command worker consumes bookmark.saved events and fills empty bookmark
// descriptions with the title of the linked page.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/notestack/internal/cache"
	"github.com/iliyamo/notestack/internal/config"
	"github.com/iliyamo/notestack/internal/database"
	"github.com/iliyamo/notestack/internal/logging"
	"github.com/iliyamo/notestack/internal/queue"
	"github.com/iliyamo/notestack/internal/repository"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	fetcher := queue.NewTitleFetcher(queue.DefaultFetchTimeout, false)
	h := &queue.PreviewHandler{
		Bookmarks: repository.NewBookmarkRepo(db),
		Fetch:     fetcher.FetchTitle,
	}
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		h.Cache = cache.NewGenerations(rdb, config.LoadCacheConfig().Prefix)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("preview worker started")
	if err := queue.StartPreviewConsumer(ctx, cfg.AMQPURL, h); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("preview worker stopped")
		return
	}
	log.Info().Msg("preview worker stopped")
}
