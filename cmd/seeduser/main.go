// Command seeduser creates or updates a back-office user. Users are the
// owners on purchase orders and inquiries and, with the admin role, the
// recipients of overdue escalations.
//
// Usage: seeduser -username jdoe -name "Jane Doe" -email jane@example.com -roles sales,admin
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"kecdesk/internal/config"
	"kecdesk/internal/infra"
	"kecdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

func main() {
	username := flag.String("username", "admin", "login name (unique)")
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "notification address")
	roles := flag.String("roles", model.RoleAdmin, "comma-separated roles: sales, project_manager, manager, admin")
	inactive := flag.Bool("inactive", false, "mark the user inactive")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	u := model.User{
		Username: strings.TrimSpace(*username),
		Name:     strings.TrimSpace(*name),
		Roles:    strings.ReplaceAll(*roles, " ", ""),
		Active:   !*inactive,
	}
	if e := strings.TrimSpace(*email); e != "" {
		u.Email = &e
	}
	if u.Username == "" {
		log.Fatal().Msg("-username is required")
	}

	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "roles", "active", "updated_at"}),
	}).Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert error")
	}
	fmt.Printf("user %q saved (roles %s)\n", u.Username, u.Roles)
}
