package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/yourusername/userauth-api/internal/config"
	"github.com/yourusername/userauth-api/pkg/auth"
)

// Выпускает bearer токен автора операций для вызовов API.
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	actorID := flag.Uint("actor", 0, "actor id to put into the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *actorID == 0 {
		fmt.Fprintln(os.Stderr, "--actor is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	svc, err := auth.NewJWTService(cfg.Auth.JWTSecret, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (set auth.jwt_secret or AUTH_JWT_SECRET)\n", err)
		os.Exit(1)
	}
	token, err := svc.GenerateToken(*actorID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
