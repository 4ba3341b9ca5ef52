package localdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// PrizeWinCount is how often a prize was actually granted.
type PrizeWinCount struct {
	PrizeName string `json:"prize_name"`
	Count     int    `json:"count"`
}

func setupSpinHistoryTable(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS spin_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			prize_name TEXT NOT NULL DEFAULT '',
			is_consolation BOOLEAN NOT NULL DEFAULT false,
			granted BOOLEAN NOT NULL DEFAULT false,
			spin_count INTEGER NOT NULL DEFAULT 0,
			multiplier INTEGER NOT NULL DEFAULT 1,
			hold_ms INTEGER NOT NULL DEFAULT 0,
			spun_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		logger.Error("Failed to create spin_history table", zap.Error(err))
		return fmt.Errorf("failed to create spin_history table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_spin_history_spun_at ON spin_history(spun_at DESC)`); err != nil {
		logger.Warn("Failed to create spin_history index", zap.Error(err))
	}
	return nil
}

// SaveSpinHistory inserts one spin and returns its row id.
func SaveSpinHistory(rec types.SpinRecord) (int64, error) {
	db := GetDB()
	if db == nil {
		return 0, errNotInitialized
	}

	if rec.SpunAt.IsZero() {
		rec.SpunAt = time.Now()
	}
	if rec.Multiplier <= 0 {
		rec.Multiplier = 1
	}

	result, err := db.Exec(`
		INSERT INTO spin_history (user_id, username, prize_name, is_consolation, granted, spin_count, multiplier, hold_ms, spun_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.UserID,
		rec.Username,
		rec.PrizeName,
		rec.IsConsolation,
		rec.Granted,
		rec.SpinCount,
		rec.Multiplier,
		rec.HoldMillis,
		rec.SpunAt.UTC(),
	)
	if err != nil {
		logger.Error("Failed to save spin history", zap.Error(err), zap.Int64("user_id", rec.UserID))
		return 0, fmt.Errorf("failed to save spin history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read spin history id: %w", err)
	}
	return id, nil
}

// GetSpinHistory returns the newest spins first.
func GetSpinHistory(limit int) ([]types.SpinRecord, error) {
	db := GetDB()
	if db == nil {
		return []types.SpinRecord{}, errNotInitialized
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := db.Query(`
		SELECT id, user_id, username, prize_name, is_consolation, granted, spin_count, multiplier, hold_ms, spun_at
		FROM spin_history
		ORDER BY spun_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		logger.Error("Failed to get spin history", zap.Error(err))
		return []types.SpinRecord{}, fmt.Errorf("failed to get spin history: %w", err)
	}
	defer rows.Close()

	history := []types.SpinRecord{}
	for rows.Next() {
		var rec types.SpinRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Username,
			&rec.PrizeName,
			&rec.IsConsolation,
			&rec.Granted,
			&rec.SpinCount,
			&rec.Multiplier,
			&rec.HoldMillis,
			&rec.SpunAt,
		); err != nil {
			logger.Error("Failed to scan spin history", zap.Error(err))
			continue
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}

// GetPrizeWinCounts counts granted prizes, most won first.
func GetPrizeWinCounts() ([]PrizeWinCount, error) {
	db := GetDB()
	if db == nil {
		return []PrizeWinCount{}, errNotInitialized
	}

	rows, err := db.Query(`
		SELECT prize_name, COUNT(*) AS wins
		FROM spin_history
		WHERE granted = 1 AND prize_name != ''
		GROUP BY prize_name
		ORDER BY wins DESC, prize_name ASC
	`)
	if err != nil {
		logger.Error("Failed to count prize wins", zap.Error(err))
		return []PrizeWinCount{}, fmt.Errorf("failed to count prize wins: %w", err)
	}
	defer rows.Close()

	counts := []PrizeWinCount{}
	for rows.Next() {
		var c PrizeWinCount
		if err := rows.Scan(&c.PrizeName, &c.Count); err != nil {
			logger.Error("Failed to scan prize win count", zap.Error(err))
			continue
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetSpinCount returns how many spins were recorded in total.
func GetSpinCount() (int, error) {
	db := GetDB()
	if db == nil {
		return 0, errNotInitialized
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM spin_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count spins: %w", err)
	}
	return count, nil
}
