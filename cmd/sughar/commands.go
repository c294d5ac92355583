package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/sughar/internal/auth"
	"github.com/matthewbaird/sughar/internal/config"
	"github.com/matthewbaird/sughar/internal/dashboard"
	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/model"
	"github.com/matthewbaird/sughar/internal/seed"
	"github.com/matthewbaird/sughar/internal/server"
)

func serveCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			opts := cfg.StoreOptions()
			if demo {
				opts.Driver = "memory"
			}
			store, err := docstore.Open(ctx, opts)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer store.Close()

			if demo {
				if err := seed.Seed(ctx, store, seed.Demo(time.Now())); err != nil {
					return err
				}
				tok, err := auth.IssueToken(cfg.JWTSecret, seed.DemoOwner, model.RoleLandlord, 24*time.Hour)
				if err != nil {
					return err
				}
				log.Printf("demo: token for %s: %s", seed.DemoOwner, tok)
			}

			return server.Run(ctx, server.Config{
				Port:         cfg.Port,
				Store:        store,
				JWTSecret:    cfg.JWTSecret,
				Location:     loc,
				LiveInterval: cfg.LiveInterval,
			})
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "serve the built-in demo portfolio from memory")
	return cmd
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a CUE or JSON fixture into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			f, err := seed.Load(file)
			if err != nil {
				return err
			}
			store, err := docstore.Open(ctx, cfg.StoreOptions())
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer store.Close()
			return seed.Seed(ctx, store, f)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (.cue or .json)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		user string
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			tok, err := auth.IssueToken(cfg.JWTSecret, user, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id (token subject)")
	cmd.Flags().StringVar(&role, "role", model.RoleLandlord, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}


func listCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print the documents of a collection owned by a landlord as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			store, err := docstore.Open(ctx, cfg.StoreOptions())
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer store.Close()

			docs, err := dashboard.FilterByOwner(ctx, store, owner, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		},
	}
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "owning landlord's user id")
	cmd.MarkFlagRequired("owner")
	return cmd
}
