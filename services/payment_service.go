package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"

	"ticket-backend/config"
	"ticket-backend/internal/status"
	"ticket-backend/models"
	"ticket-backend/monitoring"
)

// PaymentService handles the verification half of a purchase: the buyer
// submits their bank transfer reference (UTR), a human verifies it against
// the bank statement out of band, and an out-of-band confirmation flips the
// record to CONFIRMED.
type PaymentService struct {
	payments PaymentStore
	PubNub   *pubnub.PubNub
	cfg      *config.Config
}

func NewPaymentService(payments PaymentStore, pn *pubnub.PubNub, cfg *config.Config) *PaymentService {
	return &PaymentService{
		payments: payments,
		PubNub:   pn,
		cfg:      cfg,
	}
}

// SubmitVerification attaches the buyer-supplied UTR to a payment record.
//
// The status is written back as PENDING (submission is not confirmation)
// unless CONFIRM_ON_SUBMIT is set. An unknown payment id is acknowledged as
// a no-op unless REQUIRE_PAYMENT_EXISTS is set.
func (s *PaymentService) SubmitVerification(ctx context.Context, req *models.ConfirmPaymentRequest) error {
	if invalid := req.Validate(); invalid != nil {
		return invalid
	}

	st := models.StatusPending
	if s.cfg.ConfirmOnSubmit {
		st = models.StatusConfirmed
	}

	err := s.payments.AttachReference(ctx, req.PaymentID, req.UTR, st)
	if errors.Is(err, status.ErrPaymentNotFound) && !s.cfg.RequirePaymentExists {
		slog.Warn("verification for unknown payment id acknowledged", "payment_id", req.PaymentID)
		monitoring.TrackVerification("unknown_id")
		return nil
	}
	if err != nil {
		return err
	}

	monitoring.TrackVerification("submitted")
	s.notifyVerifier(req.PaymentID, req.UTR)

	return nil
}

// notifyVerifier pings the humans doing bank-statement matching.
func (s *PaymentService) notifyVerifier(paymentID, utr string) {
	if s.PubNub == nil {
		return
	}

	s.PubNub.Publish().
		Channel(s.cfg.VerifyChannel).
		Message(map[string]any{
			"type":       "verification_submitted",
			"payment_id": paymentID,
			"utr":        utr,
		}).
		Execute()
}

// ListenForConfirmations subscribes to the confirmation channel and marks
// payments CONFIRMED when the out-of-band verifier approves them. Runs until
// the context is cancelled.
func (s *PaymentService) ListenForConfirmations(ctx context.Context) {
	if s.PubNub == nil {
		return
	}

	listener := pubnub.NewListener()

	s.PubNub.AddListener(listener)
	s.PubNub.Subscribe().
		Channels([]string{s.cfg.ConfirmChannel}).
		Execute()

	for {
		select {
		case message := <-listener.Message:
			s.handleConfirmation(ctx, message)
		case <-ctx.Done():
			s.PubNub.Unsubscribe().Channels([]string{s.cfg.ConfirmChannel}).Execute()
			return
		}
	}
}

func (s *PaymentService) handleConfirmation(ctx context.Context, message *pubnub.PNMessage) {
	var confirmation struct {
		PaymentID string `json:"payment_id"`
		Status    string `json:"status"`
	}

	data, ok := message.Message.(map[string]any)
	if !ok {
		return
	}

	jsonData, _ := json.Marshal(data)
	if err := json.Unmarshal(jsonData, &confirmation); err != nil {
		slog.Error("error parsing confirmation message", "error", err)
		return
	}

	if confirmation.Status != "confirmed" || confirmation.PaymentID == "" {
		return
	}

	if err := s.payments.MarkConfirmed(ctx, confirmation.PaymentID); err != nil {
		slog.Error("failed to confirm payment", "payment_id", confirmation.PaymentID, "error", err)
		return
	}

	monitoring.TrackVerification("confirmed")
	slog.Info("payment confirmed", "payment_id", confirmation.PaymentID)
}
