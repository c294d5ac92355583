package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/matthewbaird/sughar/internal/config"
	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	store, err := docstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	if err := server.Run(ctx, server.Config{
		Port:         cfg.Port,
		Store:        store,
		JWTSecret:    cfg.JWTSecret,
		Location:     loc,
		LiveInterval: cfg.LiveInterval,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
