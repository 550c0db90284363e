package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"ticket-backend/internal/status"
	"ticket-backend/models"
	"ticket-backend/services"
)

type TicketHandler struct {
	app     *pocketbase.PocketBase
	tickets *services.TicketService
}

func NewTicketHandler(app *pocketbase.PocketBase, ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{
		app:     app,
		tickets: ticketService,
	}
}

// BuyTicket - allocate one ticket and return price, QR and payment id
func (h *TicketHandler) BuyTicket(e *core.RequestEvent) error {
	var req models.BuyTicketRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "Missing user details"})
	}

	grant, err := h.tickets.RequestTicket(e.Request.Context(), &req)
	if err != nil {
		var invalid *status.InvalidInputError
		if errors.As(err, &invalid) {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": invalid.Reason})
		}

		var soldOut *status.SoldOutError
		if errors.As(err, &soldOut) {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": soldOut.Error()})
		}

		// Storage and encoding failures stay internal.
		slog.Error("ticket allocation failed", "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Server error"})
	}

	return e.JSON(http.StatusOK, grant)
}
