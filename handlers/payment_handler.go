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

type PaymentHandler struct {
	app            *pocketbase.PocketBase
	paymentService *services.PaymentService
}

func NewPaymentHandler(app *pocketbase.PocketBase, paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		app:            app,
		paymentService: paymentService,
	}
}

// ConfirmPayment - attach the buyer's bank transfer reference to a payment
func (h *PaymentHandler) ConfirmPayment(e *core.RequestEvent) error {
	var req models.ConfirmPaymentRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "Missing payment details"})
	}

	if err := h.paymentService.SubmitVerification(e.Request.Context(), &req); err != nil {
		var invalid *status.InvalidInputError
		if errors.As(err, &invalid) {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": invalid.Reason})
		}

		if errors.Is(err, status.ErrPaymentNotFound) {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "Payment not found"})
		}

		slog.Error("verification submission failed", "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]string{"error": "Server error"})
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Payment submitted for verification"})
}
