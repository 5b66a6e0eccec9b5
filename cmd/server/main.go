package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnavshah/storeplan-api/pkg/config"
	"github.com/arnavshah/storeplan-api/pkg/logger"
	"github.com/arnavshah/storeplan-api/pkg/server"
)

func main() {
	log := logger.New("server")

	// .env from the working directory or a parent
	config.LoadDotEnv()
	cfg, err := config.Load(os.Getenv("STOREPLAN_CONFIG"))
	if err != nil {
		log.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	r, err := server.Build(cfg)
	if err != nil {
		log.Errorf("could not start: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, cfg.Addr(), r, log); err != nil {
		log.Errorf("could not run server: %v", err)
		os.Exit(1)
	}
}
