package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"ticket-backend/config"
	"ticket-backend/internal/status"
	"ticket-backend/internal/upi"
	"ticket-backend/models"
	"ticket-backend/monitoring"
	"ticket-backend/utils"
)

// TicketService runs the allocation transaction: validate the buyer, price
// the tier against the current counter snapshot, reserve one unit of
// capacity and create the payment record with its QR code.
type TicketService struct {
	counters *CounterStore
	payments PaymentStore
	issuer   *upi.Issuer
	cfg      *config.Config
	breaker  *utils.CircuitBreaker
}

// TicketGrant is what the buyer gets back: the price that was locked in, the
// QR image to pay with and the payment record to verify against later.
type TicketGrant struct {
	Price     int    `json:"price"`
	QR        string `json:"qr"`
	PaymentID string `json:"paymentId"`
}

func NewTicketService(counters *CounterStore, payments PaymentStore, issuer *upi.Issuer, cfg *config.Config) *TicketService {
	return &TicketService{
		counters: counters,
		payments: payments,
		issuer:   issuer,
		cfg:      cfg,
		breaker:  utils.NewCircuitBreaker("payment-store"),
	}
}

// priceFor applies a tier's pricing rule to a sold count. The second return
// is false once the tier is at capacity.
func priceFor(tc config.TierConfig, sold int) (int, bool) {
	if sold >= tc.Capacity {
		return 0, false
	}
	if tc.StepCutoff > 0 && sold >= tc.StepCutoff {
		return tc.StepPrice, true
	}
	return tc.BasePrice, true
}

// RequestTicket reserves one unit of a tier and returns the payment grant.
//
// The counter increment is a single storage-side add, so concurrent requests
// never lose updates. In the default mode the pricing read and the increment
// are still two steps; STRICT_CAPACITY swaps the increment for a
// capacity-bounded one that also closes that window.
func (s *TicketService) RequestTicket(ctx context.Context, req *models.BuyTicketRequest) (*TicketGrant, error) {
	ticketType, invalid := req.Validate()
	if invalid != nil {
		return nil, invalid
	}

	start := time.Now()
	defer func() {
		monitoring.TrackAllocationDuration(string(ticketType), time.Since(start))
	}()

	tier, _ := s.cfg.Tier(string(ticketType))

	snapshot, err := s.counters.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	price, available := priceFor(tier, snapshot.Sold(ticketType))
	if !available {
		monitoring.TrackSoldOut(string(ticketType))
		return nil, &status.SoldOutError{TicketType: string(ticketType)}
	}

	if s.cfg.StrictCapacity {
		if _, err := s.counters.BoundedIncrement(ctx, ticketType, tier.Capacity); err != nil {
			if _, soldOut := err.(*status.SoldOutError); soldOut {
				monitoring.TrackSoldOut(string(ticketType))
			}
			return nil, err
		}
	} else {
		if _, err := s.counters.Increment(ctx, ticketType); err != nil {
			return nil, fmt.Errorf("counter increment: %w", err)
		}
	}

	refCode, err := utils.GenerateCode(4)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Name:       req.Name,
		Dept:       req.Dept,
		StudentID:  req.StudentID,
		Phone:      req.Phone,
		TicketType: ticketType,
		Price:      price,
		RefCode:    refCode,
	}

	// Capacity is already consumed at this point; a failed write leaves the
	// counter one ahead of the payment records. That drift is accepted, the
	// breaker just keeps a dead store from compounding it.
	_, err = s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.payments.Create(ctx, payment)
	})
	if err != nil {
		slog.Error("payment record create failed after reservation",
			"ticket_type", ticketType,
			"error", err,
		)
		return nil, err
	}

	qr, err := s.issuer.DataURL(&upi.Form{
		Amount:    decimal.NewFromInt(int64(price)),
		Reference: refCode,
	})
	if err != nil {
		return nil, err
	}

	monitoring.TrackSale(string(ticketType))

	return &TicketGrant{
		Price:     price,
		QR:        qr,
		PaymentID: payment.ID,
	}, nil
}
