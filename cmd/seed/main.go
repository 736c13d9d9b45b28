// Command seed creates the initial EMPLOYEE account. Registration through the
// API only ever produces CUSTOMER users, so the first employee has to be
// provisioned out of band.
//
// Credentials come from DWL_SEED_USERNAME and DWL_SEED_PASSWORD. The command
// is idempotent: if the username already exists it exits without changes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"digital-wallet/config"
	pgStorage "digital-wallet/internal/adapter/storage/postgres"
	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/service"
	"digital-wallet/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	username := os.Getenv("DWL_SEED_USERNAME")
	password := os.Getenv("DWL_SEED_PASSWORD")
	if username == "" || password == "" {
		log.Fatal().Msg("DWL_SEED_USERNAME and DWL_SEED_PASSWORD must be set")
	}
	if len(password) < 8 {
		log.Fatal().Msg("seed password must be at least 8 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := pgStorage.NewUserRepo(pool)
	customerRepo := pgStorage.NewCustomerRepo(pool)
	hashSvc := service.NewBcryptHashService()

	existing, err := userRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up user")
	}
	if existing != nil {
		log.Info().Str("username", username).Msg("Employee already exists, nothing to do")
		return
	}

	hash, err := hashSvc.Hash(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:         uuid.New(),
		Name:       "Wallet",
		Surname:    "Operator",
		NationalID: "SEED-" + uuid.NewString()[:8],
		CreatedAt:  now,
	}
	if err := customerRepo.Create(ctx, customer); err != nil {
		log.Fatal().Err(err).Msg("Failed to create customer")
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CustomerID:   customer.ID,
		Role:         domain.RoleEmployee,
		CreatedAt:    now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("Failed to create employee user")
	}

	log.Info().
		Str("username", username).
		Str("user_id", user.ID.String()).
		Msg("Employee account created")
}
