package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

func main() {
	tenantFlag := flag.String("tenant", "", "tenant ID to seed (random when empty)")
	locations := flag.Int("locations", 3, "number of locations")
	products := flag.Int("products", 50, "number of products")
	maxQty := flag.Int("max-qty", 50, "maximum on-hand quantity per product and location")
	seedValue := flag.Uint64("seed", 0, "random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	tenantID := uuid.New()
	if *tenantFlag != "" {
		tenantID, err = uuid.Parse(*tenantFlag)
		if err != nil {
			log.Fatal("Invalid tenant ID", zap.String("tenant", *tenantFlag), zap.Error(err))
		}
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := seed.Run(ctx, db.DB, seed.Options{
		TenantID:    tenantID,
		Locations:   *locations,
		Products:    *products,
		MaxQuantity: *maxQty,
		Seed:        *seedValue,
	}, log)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	fmt.Printf("Tenant: %s\n", tenantID)
	for _, loc := range result.Locations {
		fmt.Printf("Location %s  %s  %s\n", loc.Code, loc.ID, loc.Name)
	}

	if cfg.JWT.Secret == "" {
		return
	}
	token, expiresAt, err := auth.NewJWTService(cfg.JWT).GenerateToken(auth.GenerateTokenInput{
		TenantID: tenantID,
		UserID:   uuid.New(),
		Username: "seed-operator",
	})
	if err != nil {
		log.Fatal("Failed to sign development token", zap.Error(err))
	}
	fmt.Printf("Token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}
