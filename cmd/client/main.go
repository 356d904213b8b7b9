package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/classroom/internal/buildinfo"
	"github.com/dmitrijs2005/classroom/internal/client/cli"
	"github.com/dmitrijs2005/classroom/internal/client/config"
	"github.com/dmitrijs2005/classroom/internal/client/storage"
	"github.com/dmitrijs2005/classroom/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	repos, err := storage.Open(ctx, cfg.SessionDBPath)
	if err != nil {
		log.Fatalf("error initializing local storage: %v", err)
	}
	defer repos.Close()

	app, err := cli.NewApp(cfg, repos, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
