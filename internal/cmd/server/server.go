// Package server parses server flags and launches the HTTP API service.
package server

import (
	"context"
	"flag"

	app "github.com/louisbranch/splittab/internal/app/server"
	entrypoint "github.com/louisbranch/splittab/internal/platform/cmd"
)

// Config holds server command configuration.
type Config struct {
	Port      int    `env:"SPLITTAB_PORT" envDefault:"8080"`
	DBPath    string `env:"SPLITTAB_DB_PATH" envDefault:"splittab.db"`
	JWTSecret string `env:"SPLITTAB_JWT_SECRET"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(context.Context) error {
		return app.Run(ctx, app.Config{
			Port:      cfg.Port,
			DBPath:    cfg.DBPath,
			JWTSecret: cfg.JWTSecret,
		})
	})
}
