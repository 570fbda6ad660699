// cmd/migrate apply các file SQL trong package migrations, mỗi file một transaction.
// Usage: go run ./cmd/migrate [up|status]
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"library-lending-backend/internal/config"
	"library-lending-backend/migrations"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	dbCfg, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load database config: %v", err)
	}

	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	switch command {
	case "up":
		err = up(ctx, db)
	case "status":
		err = status(ctx, db)
	default:
		err = fmt.Errorf("unknown command %q (want up|status)", command)
	}
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
}

func up(ctx context.Context, db *sql.DB) error {
	files, applied, err := load(ctx, db)
	if err != nil {
		return err
	}

	count := 0
	for _, name := range files {
		if applied[name] {
			continue
		}
		if err := apply(ctx, db, name); err != nil {
			return err
		}
		log.Printf("✅ Applied %s", name)
		count++
	}

	log.Printf("🎉 %d migration(s) applied", count)
	return nil
}

func status(ctx context.Context, db *sql.DB) error {
	files, applied, err := load(ctx, db)
	if err != nil {
		return err
	}
	for _, name := range files {
		state := "pending"
		if applied[name] {
			state = "applied"
		}
		log.Printf("%-8s %s", state, name)
	}
	return nil
}

func load(ctx context.Context, db *sql.DB) ([]string, map[string]bool, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(entries)

	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, nil, err
		}
		applied[v] = true
	}
	return entries, applied, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, name string) error {
	body, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return describe(name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, strings.TrimSpace(name)); err != nil {
		return describe(name, err)
	}
	return tx.Commit()
}

// describe thêm SQLSTATE khi lỗi đến từ PostgreSQL
func describe(name string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: [%s] %s: %w", name, pqErr.Code, pqErr.Message, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}
