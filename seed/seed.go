// Package seed loads JSON fixtures into an empty database. It is intended
// for development and demo environments and is gated behind SEED_ON_START.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
	"github.com/user/storefront-go/products"
	"github.com/user/storefront-go/users"
)

type productRecord struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int32   `json:"stock"`
	Category    *string `json:"category"`
}

type userRecord struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Run inserts the fixtures from dir through the repositories. A table that
// already holds rows is skipped, so restarting the server never duplicates
// data.
func Run(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	if err := seedUsers(ctx, pool, filepath.Join(dir, "users.json")); err != nil {
		return err
	}
	return seedProducts(ctx, pool, filepath.Join(dir, "products.json"))
}

func loadRecords[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperror.NewInternalError(fmt.Sprintf("failed to read seed file %s", path), err)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, apperror.NewInternalError(fmt.Sprintf("failed to parse seed file %s", path), err)
	}
	return records, nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, path string) error {
	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return apperror.NewDatabaseError("failed to count users", err)
	}
	if count > 0 {
		log.Printf("Seed: users table already has %d rows, skipping", count)
		return nil
	}

	records, err := loadRecords[userRecord](path)
	if err != nil || len(records) == 0 {
		return err
	}

	repo := users.NewRepository(pool)
	for _, rec := range records {
		hash, err := auth.HashPassword(rec.Password)
		if err != nil {
			return apperror.NewInternalError("failed to hash seed password", err)
		}
		if _, err := repo.Create(ctx, rec.Username, rec.Email, hash); err != nil {
			return err
		}
	}

	log.Printf("Seed: inserted %d users", len(records))
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return apperror.NewDatabaseError("failed to count products", err)
	}
	if count > 0 {
		log.Printf("Seed: products table already has %d rows, skipping", count)
		return nil
	}

	records, err := loadRecords[productRecord](path)
	if err != nil || len(records) == 0 {
		return err
	}

	repo := products.NewRepository(pool)
	for _, rec := range records {
		if _, err := repo.Create(ctx, rec.Name, rec.Description, rec.Price, rec.Stock, rec.Category); err != nil {
			return err
		}
	}

	log.Printf("Seed: inserted %d products", len(records))
	return nil
}
