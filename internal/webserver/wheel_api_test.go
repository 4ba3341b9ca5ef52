package webserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/localdb"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
)

func setupWheelAPITestDB(t *testing.T) {
	t.Helper()

	if localdb.DBClient != nil {
		_ = localdb.DBClient.Close()
		localdb.DBClient = nil
	}

	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := localdb.SetupDB(dbPath)
	if err != nil {
		t.Fatalf("SetupDB failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		localdb.DBClient = nil
	})
}

func setupTestManager(t *testing.T) *wheel.Manager {
	t.Helper()

	cfg := types.Config{
		CommandPrefix: "!",
		Spin: types.SpinConfig{
			Enabled: true,
			Prizes: []types.Prize{
				{Name: "Gold", Description: "shiny", Type: types.PrizeTypeRole, RoleID: 1, Odds: 10, Message: "gold!"},
				{Name: "Silver", Description: "less shiny", Type: types.PrizeTypeRole, RoleID: 2, Odds: 5, Message: "silver!"},
			},
		},
		Button: types.ButtonConfig{Enabled: true, RoleID: 3, ActiveTime: time.Minute, RoleTime: 0},
	}
	m := wheel.New(wheel.Options{Config: cfg})
	SetManager(m)
	t.Cleanup(func() { SetManager(nil) })
	return m
}

func TestHandlePrizes(t *testing.T) {
	m := setupTestManager(t)
	m.GrantPrize(context.Background(), types.Target{UserID: 42, Username: "alice"}, "Silver")

	rec := httptest.NewRecorder()
	handlePrizes(rec, httptest.NewRequest(http.MethodGet, "/api/prizes", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got=%d want=%d", rec.Code, http.StatusOK)
	}

	var body struct {
		Enabled bool        `json:"enabled"`
		Prizes  []prizeView `json:"prizes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Enabled || len(body.Prizes) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Prizes[0].Name != "Gold" || body.Prizes[1].Name != "Silver" {
		t.Fatalf("draw order not preserved: %+v", body.Prizes)
	}
	if len(body.Prizes[1].Holders) != 1 || body.Prizes[1].Holders[0] != 42 {
		t.Fatalf("unexpected holders: %+v", body.Prizes[1].Holders)
	}
	if len(body.Prizes[0].Holders) != 0 {
		t.Fatalf("unexpected holders for Gold: %+v", body.Prizes[0].Holders)
	}
}

func TestHandlePrizes_NoManager(t *testing.T) {
	SetManager(nil)

	rec := httptest.NewRecorder()
	handlePrizes(rec, httptest.NewRequest(http.MethodGet, "/api/prizes", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status mismatch: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleButton(t *testing.T) {
	m := setupTestManager(t)
	m.ShowButton(context.Background(), types.Target{UserID: 1, Username: "alice"})
	m.PressButton(context.Background(), types.Target{UserID: 7, Username: "bob"})

	rec := httptest.NewRecorder()
	handleButton(rec, httptest.NewRequest(http.MethodGet, "/api/button", nil))

	var status wheel.ButtonStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if status.State != "active" {
		t.Fatalf("unexpected state: got=%q want=%q", status.State, "active")
	}
	if len(status.Holders) != 1 || status.Holders[0] != 7 {
		t.Fatalf("unexpected holders: %+v", status.Holders)
	}
	if status.ActiveTime != time.Minute.Milliseconds() {
		t.Fatalf("unexpected active time: %d", status.ActiveTime)
	}
}

func TestHandleHistory(t *testing.T) {
	setupWheelAPITestDB(t)

	for i := 0; i < 3; i++ {
		if _, err := localdb.SaveSpinHistory(types.SpinRecord{UserID: int64(i + 1), Username: "user", SpunAt: time.Now().Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("SaveSpinHistory failed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got=%d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		History []types.SpinRecord `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.History) != 2 || body.History[0].UserID != 3 {
		t.Fatalf("unexpected history: %+v", body.History)
	}

	bad := httptest.NewRecorder()
	handleHistory(bad, httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("status mismatch for invalid limit: got=%d", bad.Code)
	}
}

func TestHandleStats(t *testing.T) {
	setupWheelAPITestDB(t)
	m := setupTestManager(t)
	m.GrantPrize(context.Background(), types.Target{UserID: 5, Username: "carol"}, "Gold")

	if _, err := localdb.SaveSpinHistory(types.SpinRecord{UserID: 5, Username: "carol", PrizeName: "Gold", Granted: true}); err != nil {
		t.Fatalf("SaveSpinHistory failed: %v", err)
	}

	rec := httptest.NewRecorder()
	handleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: got=%d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Holding        map[string]int          `json:"holding"`
		HistoryEnabled bool                    `json:"history_enabled"`
		TotalSpins     int                     `json:"total_spins"`
		PrizeWins      []localdb.PrizeWinCount `json:"prize_wins"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.HistoryEnabled || body.TotalSpins != 1 {
		t.Fatalf("unexpected stats: %+v", body)
	}
	if body.Holding["Gold"] != 1 {
		t.Fatalf("unexpected holding: %+v", body.Holding)
	}
	if len(body.PrizeWins) != 1 || body.PrizeWins[0].PrizeName != "Gold" {
		t.Fatalf("unexpected wins: %+v", body.PrizeWins)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	handleButton(rec, httptest.NewRequest(http.MethodPost, "/api/button", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status mismatch: got=%d want=%d", rec.Code, http.StatusMethodNotAllowed)
	}
}
