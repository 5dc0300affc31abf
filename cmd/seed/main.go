package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/inventory-sales-api/config"
	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	"github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	mongoinfra "github.com/oksasatya/inventory-sales-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
)

// seed creates a verified demo user so the API can be tried without email.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()
	client, err := mongoinfra.NewClient(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongoinfra.RunMigrations(cfg.MongoURI, cfg.MongoDB, cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := mongoinfra.NewUserRepository(client.Database(cfg.MongoDB))

	email := "demo@inventory.local"
	password := "password123"
	name := "Demo User"

	if u, err := users.GetByEmail(ctx, email); err == nil {
		fmt.Printf("user already seeded: id=%s email=%s\n", u.ID.Hex(), email)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("failed to look up user: %v", err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{FullName: name, Email: email, Password: hash}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	if err := users.MarkVerified(ctx, u.ID); err != nil {
		log.Fatalf("failed to verify user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID.Hex(), email, name, password)
}
