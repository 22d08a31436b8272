package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/yourusername/userauth-api/internal/config"
	"github.com/yourusername/userauth-api/pkg/database"
	"github.com/yourusername/userauth-api/pkg/logger"
)

// Управление схемой вне запуска API:
//
//	migrate up
//	migrate down --steps 1
//	migrate version
//	migrate force --version 1   (снять dirty после упавшей миграции)
func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")
	steps := flag.Int("steps", 0, "number of migrations to roll back (down); 0 rolls back all")
	version := flag.Int("version", -1, "schema version to force")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate [--config path] up|down|version|force")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, os.Stderr)

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), log, false)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = database.MigrateDB(db, log)
	case "down":
		err = database.RollbackDB(db, *steps, log)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = database.SchemaVersion(db)
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	case "force":
		if *version < 0 {
			err = fmt.Errorf("--version is required for force")
			break
		}
		err = database.ForceVersion(db, *version)
		if err == nil {
			log.Info("Schema version forced", "version", *version)
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Error("Migration command failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
