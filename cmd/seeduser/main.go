// Command seeduser creates or refreshes a back-office account.
//
//	go run ./cmd/seeduser -username admin -password secret -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"jewelshop/internal/config"
	"jewelshop/internal/infra"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"
	"jewelshop/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "password (required)")
	role := flag.String("role", model.RoleAdmin, "admin | user")
	email := flag.String("email", "", "optional e-mail, also accepted as login")
	flag.Parse()

	if *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != model.RoleAdmin && *role != model.RoleUser {
		log.Fatal().Str("role", *role).Msg("role must be admin or user")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}
	u := &model.User{Username: *username, PasswordHash: hash, Role: *role, Active: true}
	if *email != "" {
		u.Email = email
	}

	if err := repository.NewUserRepository(db).Upsert(context.Background(), u); err != nil {
		log.Fatal().Err(err).Msg("upsert failed")
	}
	fmt.Printf("user %q (%s) created/updated\n", *username, *role)
}
