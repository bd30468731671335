package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"userkeeper/internal/auth"
	"userkeeper/internal/config"
	"userkeeper/internal/db"
	"userkeeper/internal/observability"
	"userkeeper/internal/repository"
	"userkeeper/internal/service"
)

func main() {
	file := flag.String("file", "", "JSON array of users to create (name, email, password, password_second, cellphone)")
	count := flag.Int("count", 10, "number of demo users to generate when -file is not set")
	password := flag.String("password", "changeme", "password given to generated users")
	flag.Parse()

	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var users []service.CreateUserInput
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Fatal("open seed file", zap.Error(err))
		}
		users, err = loadUsers(f)
		f.Close()
		if err != nil {
			logger.Fatal("read seed file", zap.String("file", *file), zap.Error(err))
		}
	} else {
		users = generateUsers(*count, *password)
	}
	logger.Info("seeding users", zap.Int("rows", len(users)))

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB, false); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	svc := service.NewUserService(repository.NewUserRepository(gormDB), auth.NewBcryptHasher(cfg.BcryptCost), nil, logger)
	resp, err := svc.BulkCreateUsers(context.Background(), users)
	if err != nil {
		logger.Fatal("seed users", zap.Error(err))
	}
	logger.Info("seed completed", zap.Any("message", resp.Message))
}

// loadUsers decodes a JSON array of user payloads.
func loadUsers(r io.Reader) ([]service.CreateUserInput, error) {
	var users []service.CreateUserInput
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return users, nil
}

// generateUsers builds n demo users with unique emails.
func generateUsers(n int, password string) []service.CreateUserInput {
	users := make([]service.CreateUserInput, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		users = append(users, service.CreateUserInput{
			Name:           fmt.Sprintf("Demo User %d", i+1),
			Email:          fmt.Sprintf("user-%s@example.com", id.String()),
			Password:       password,
			PasswordSecond: password,
			Cellphone:      fmt.Sprintf("555-%04d", i+1),
		})
	}
	return users
}
