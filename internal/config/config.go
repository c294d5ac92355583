// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/matthewbaird/sughar/internal/docstore"
)

type App struct {
	Port int `envconfig:"PORT" default:"8080"`

	// Store
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DatabaseURL   string `envconfig:"DATABASE_URL" default:"file:sughar.db?_pragma=foreign_keys(1)"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"sughar"`

	// JWT
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Dashboard
	Timezone     string        `envconfig:"DASHBOARD_TIMEZONE" default:"Local"`
	LiveInterval time.Duration `envconfig:"DASHBOARD_LIVE_INTERVAL" default:"30s"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over .env.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: reading .env: %v", err)
	}
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	if c.JWTSecret == "" {
		return App{}, errors.New("JWT_SECRET must not be empty")
	}
	if c.LiveInterval <= 0 {
		return App{}, fmt.Errorf("DASHBOARD_LIVE_INTERVAL must be positive, got %s", c.LiveInterval)
	}
	if _, err := c.Location(); err != nil {
		return App{}, err
	}
	return c, nil
}

// Location resolves DASHBOARD_TIMEZONE.
func (c App) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("DASHBOARD_TIMEZONE: %w", err)
	}
	return loc, nil
}

// StoreOptions maps the store settings onto docstore.Open options.
func (c App) StoreOptions() docstore.Options {
	return docstore.Options{
		Driver:        c.StoreDriver,
		DSN:           c.DatabaseURL,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}
