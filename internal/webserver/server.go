package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/metrics"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	"go.uber.org/zap"
)

var (
	httpServer *http.Server

	managerMu    sync.RWMutex
	wheelManager *wheel.Manager
)

// SetManager points the API handlers at the running wheel.
func SetManager(m *wheel.Manager) {
	managerMu.Lock()
	defer managerMu.Unlock()
	wheelManager = m
}

func currentManager() *wheel.Manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return wheelManager
}

// corsMiddleware adds CORS headers to HTTP handlers
func corsMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler(w, r)
	}
}

// NewMux registers every route served by the overlay server.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/prizes", corsMiddleware(handlePrizes))
	mux.HandleFunc("/api/button", corsMiddleware(handleButton))
	mux.HandleFunc("/api/history", corsMiddleware(handleHistory))
	mux.HandleFunc("/api/stats", corsMiddleware(handleStats))
	mux.HandleFunc("/status", handleStatus)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/ws", handleWS)
	return mux
}

func StartWebServer(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting web server", zap.String("address", addr))

	httpServer = &http.Server{
		Addr:         addr,
		Handler:      NewMux(),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine and wait briefly to check for immediate errors
	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("Failed to start web server", zap.Error(err))
			return fmt.Errorf("failed to start web server on port %d: %w", port, err)
		}
	case <-time.After(100 * time.Millisecond):
	}

	return nil
}

// Shutdown gracefully shuts down the web server
func Shutdown() {
	if httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown web server gracefully", zap.Error(err))
	} else {
		logger.Info("Web server shutdown complete")
	}
	httpServer = nil
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	statusData := map[string]any{
		"ws_clients": overlay.count(),
		"last_event": overlay.lastSeq(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if m := currentManager(); m != nil {
		statusData["spin_enabled"] = m.SpinEnabled()
		statusData["button_state"] = m.ButtonState().String()
	}
	writeJSON(w, http.StatusOK, statusData)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
