package localdb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var DBClient *sql.DB

var errNotInitialized = errors.New("database not initialized")

// SetupDB opens the history database and creates its tables. Calling it
// again returns the already open client.
func SetupDB(dbPath string) (*sql.DB, error) {
	if DBClient != nil {
		return DBClient, nil
	}

	// WAL and a busy timeout keep concurrent readers from failing writes.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// sqlite has a single writer
	db.SetMaxOpenConns(1)

	if err := setupSpinHistoryTable(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := setupButtonPressTable(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	DBClient = db
	logger.Info("Database ready", zap.String("path", dbPath))
	return db, nil
}

func GetDB() *sql.DB {
	return DBClient
}

// Close closes the shared client if one is open.
func Close() error {
	if DBClient == nil {
		return nil
	}
	err := DBClient.Close()
	DBClient = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
