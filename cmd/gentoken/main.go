// Command gentoken mints a bearer token for an existing, active user.
// There is no login endpoint; operators hand tokens out with this tool.
//
// Usage: gentoken -username jdoe [-hours 8]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kecdesk/internal/config"
	"kecdesk/internal/infra"
	"kecdesk/internal/middleware"
	"kecdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	username := flag.String("username", "", "user to issue the token for")
	hours := flag.Int("hours", 0, "token lifetime in hours (default JWT_EXPIRATION_HOURS)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}
	if *username == "" {
		log.Fatal().Msg("-username is required")
	}
	ttl := time.Duration(cfg.JWTExpirationHours) * time.Hour
	if *hours > 0 {
		ttl = time.Duration(*hours) * time.Hour
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	u, err := repository.NewUserRepository(db).FindByUsername(context.Background(), *username)
	if err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("user not found")
	}
	if !u.Active {
		log.Fatal().Str("username", *username).Msg("user is inactive")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, u, ttl, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(token)
}
