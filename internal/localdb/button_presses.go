package localdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

func setupButtonPressTable(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS button_presses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			pressed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		logger.Error("Failed to create button_presses table", zap.Error(err))
		return fmt.Errorf("failed to create button_presses table: %w", err)
	}
	return nil
}

func SaveButtonPress(rec types.ButtonPressRecord) (int64, error) {
	db := GetDB()
	if db == nil {
		return 0, errNotInitialized
	}
	if rec.PressedAt.IsZero() {
		rec.PressedAt = time.Now()
	}

	result, err := db.Exec(`INSERT INTO button_presses (user_id, username, pressed_at) VALUES (?, ?, ?)`,
		rec.UserID, rec.Username, rec.PressedAt.UTC())
	if err != nil {
		logger.Error("Failed to save button press", zap.Error(err), zap.Int64("user_id", rec.UserID))
		return 0, fmt.Errorf("failed to save button press: %w", err)
	}
	return result.LastInsertId()
}

// GetButtonPressCount returns the number of presses, optionally for one user.
// userID 0 counts everyone.
func GetButtonPressCount(userID int64) (int, error) {
	db := GetDB()
	if db == nil {
		return 0, errNotInitialized
	}

	var count int
	var err error
	if userID == 0 {
		err = db.QueryRow(`SELECT COUNT(*) FROM button_presses`).Scan(&count)
	} else {
		err = db.QueryRow(`SELECT COUNT(*) FROM button_presses WHERE user_id = ?`, userID).Scan(&count)
	}
	if err != nil {
		logger.Error("Failed to count button presses", zap.Error(err))
		return 0, fmt.Errorf("failed to count button presses: %w", err)
	}
	return count, nil
}
