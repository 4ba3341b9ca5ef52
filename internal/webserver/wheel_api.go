package webserver

import (
	"net/http"
	"strconv"

	"github.com/ichi0g0y/spin-the-wheel/internal/localdb"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

const maxHistoryLimit = 500

type prizeView struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Odds          uint32  `json:"odds"`
	RoleTimeMs    int64   `json:"role_time_ms"`
	VariationMs   int64   `json:"role_time_variation_ms"`
	IsSilencing   bool    `json:"is_silencing"`
	IsConsolation bool    `json:"is_consolation"`
	Holders       []int64 `json:"holders"`
}

func newPrizeView(p types.Prize, holders []int64) prizeView {
	if holders == nil {
		holders = []int64{}
	}
	return prizeView{
		Name:          p.Name,
		Description:   p.Description,
		Odds:          p.Odds,
		RoleTimeMs:    p.RoleTime.Milliseconds(),
		VariationMs:   p.RoleTimeVariation.Milliseconds(),
		IsSilencing:   p.IsSilencing,
		IsConsolation: p.IsConsolation(),
		Holders:       holders,
	}
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// handlePrizes lists the catalog in draw order with the current holders.
func handlePrizes(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	m := currentManager()
	if m == nil {
		http.Error(w, "Wheel not ready", http.StatusServiceUnavailable)
		return
	}

	holdings := m.Holdings()
	prizes := []prizeView{}
	for _, p := range m.Prizes() {
		prizes = append(prizes, newPrizeView(p, holdings[p.Name]))
	}

	resp := map[string]any{
		"enabled": m.SpinEnabled(),
		"prizes":  prizes,
	}
	if c, ok := m.Consolation(); ok {
		resp["consolation"] = newPrizeView(c, holdings[c.Name])
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleButton(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	m := currentManager()
	if m == nil {
		http.Error(w, "Wheel not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, m.ButtonStatus())
}

// handleHistory returns the newest spins, limit defaults to 50.
func handleHistory(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if localdb.GetDB() == nil {
		http.Error(w, "History not available", http.StatusServiceUnavailable)
		return
	}

	history, err := localdb.GetSpinHistory(limit)
	if err != nil {
		logger.Error("Failed to get spin history", zap.Error(err))
		http.Error(w, "Failed to get spin history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// handleStats combines live holdings with the recorded history totals.
func handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	resp := map[string]any{}
	if m := currentManager(); m != nil {
		holding := map[string]int{}
		for name, holders := range m.Holdings() {
			holding[name] = len(holders)
		}
		resp["holding"] = holding
	}

	if localdb.GetDB() == nil {
		resp["history_enabled"] = false
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp["history_enabled"] = true

	spins, err := localdb.GetSpinCount()
	if err != nil {
		logger.Error("Failed to count spins", zap.Error(err))
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	wins, err := localdb.GetPrizeWinCounts()
	if err != nil {
		logger.Error("Failed to count prize wins", zap.Error(err))
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	presses, err := localdb.GetButtonPressCount(0)
	if err != nil {
		logger.Error("Failed to count button presses", zap.Error(err))
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	resp["total_spins"] = spins
	resp["prize_wins"] = wins
	resp["button_presses"] = presses
	writeJSON(w, http.StatusOK, resp)
}
