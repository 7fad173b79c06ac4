// Package database prepares the MySQL database of the server under test before a
// suite run.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"e2erun/internal/config"
)

// Manager creates and recreates the application database
type Manager struct {
	config *config.Config
	logger *zap.Logger
	open   func(dsn string) (*sql.DB, error)
}

// NewManager creates a new Manager
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		config: cfg,
		logger: logger,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}
}

// DSN returns the server-level DSN, without a selected database.
// Values missing from the config fall back to the DB_* environment variables.
func (m *Manager) DSN() string {
	db := m.config.Database

	c := mysql.NewConfig()
	c.Net = "tcp"
	c.User = firstNonEmpty(db.User, os.Getenv("DB_USERNAME"), "root")
	c.Passwd = firstNonEmpty(db.Password, os.Getenv("DB_PASSWORD"))
	c.Addr = firstNonEmpty(db.Host, os.Getenv("DB_HOST"), "127.0.0.1") + ":" +
		firstNonEmpty(db.Port, os.Getenv("DB_PORT"), "3306")
	return c.FormatDSN()
}

// Prepare makes sure the database exists. With fresh it is dropped and created again.
// It returns whether the database was created.
func (m *Manager) Prepare(ctx context.Context, fresh bool) (bool, error) {
	name := m.config.GetDatabaseName()
	if !isValidDatabaseName(name) {
		return false, fmt.Errorf("invalid database name: %s", name)
	}

	db, err := m.open(m.DSN())
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server: %w", err)
	}

	if fresh {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)); err != nil {
			return false, fmt.Errorf("failed to drop database %s: %w", name, err)
		}
		m.logger.Info("Dropped database", zap.String("database", name))
	}

	exists, err := databaseExists(ctx, db, name)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return false, nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	m.logger.Info("Created database", zap.String("database", name))
	return true, nil
}

// databaseExists checks if a database exists
func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// isValidDatabaseName validates database name (basic check)
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
		default:
			return false
		}
	}
	// Reject keywords that could end up in identifiers built from user input
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if upper == word {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
