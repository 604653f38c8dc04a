// Command notestack is a terminal client for the notestack API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/notestack/internal/cli"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	server := flag.String("server", envOr("NOTESTACK_URL", "http://localhost:8000"), "API base URL")
	session := flag.String("session", envOr("NOTESTACK_SESSION", cli.DefaultSessionPath()), "session file")
	verbose := flag.Bool("v", false, "log requests and token refreshes")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	app, err := cli.NewApp(*server, *session, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "notestack:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "notestack:", err)
		os.Exit(1)
	}
}
