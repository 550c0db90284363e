package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"ticket-backend/services"
)

type AdminHandler struct {
	app      *pocketbase.PocketBase
	counters *services.CounterStore
	payments services.PaymentStore
}

func NewAdminHandler(app *pocketbase.PocketBase, counters *services.CounterStore, payments services.PaymentStore) *AdminHandler {
	return &AdminHandler{
		app:      app,
		counters: counters,
		payments: payments,
	}
}

// GetStats - counter snapshot plus per-tier payment counts and revenue
func (h *AdminHandler) GetStats(e *core.RequestEvent) error {
	ctx := e.Request.Context()

	snapshot, err := h.counters.Snapshot(ctx)
	if err != nil {
		slog.Error("failed to read counter snapshot", "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Server error"})
	}

	summary, err := h.payments.TypeSummary(ctx)
	if err != nil {
		slog.Error("failed to aggregate payments", "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Server error"})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"counters": snapshot,
		"payments": summary,
	})
}
