package localdb

import "github.com/ichi0g0y/spin-the-wheel/internal/types"

// HistoryRecorder writes spins and presses to the shared database.
type HistoryRecorder struct{}

func (HistoryRecorder) RecordSpin(rec types.SpinRecord) error {
	_, err := SaveSpinHistory(rec)
	return err
}

func (HistoryRecorder) RecordButtonPress(rec types.ButtonPressRecord) error {
	_, err := SaveButtonPress(rec)
	return err
}
