package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// Store is the durable mirror of the in-memory alert map. Every alert
// mutation is written here synchronously so a restart can rebuild state.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createAlertsTable := `
	CREATE TABLE IF NOT EXISTS tracked_tokens (
		alert_id TEXT PRIMARY KEY,
		chat_id INTEGER NOT NULL,
		token_address TEXT NOT NULL,
		token_name TEXT NOT NULL,
		pair_address TEXT NOT NULL,
		base_price REAL NOT NULL,
		market_cap REAL NOT NULL,
		last_multiple INTEGER NOT NULL DEFAULT 1
	);`
	if _, err := db.Exec(createAlertsTable); err != nil {
		return nil, fmt.Errorf("failed to create tracked_tokens table: %w", err)
	}

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT NOT NULL,
		label_key TEXT DEFAULT NULL,
		label_value TEXT DEFAULT NULL,
		metric_value REAL NOT NULL,
		PRIMARY KEY (metric_name, label_key, label_value)
	);`
	if _, err := db.Exec(createMetricsTable); err != nil {
		return nil, fmt.Errorf("failed to create metrics table: %w", err)
	}

	log.Println("Database initialized successfully.")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
