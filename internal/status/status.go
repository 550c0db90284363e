package status

import (
	"errors"
	"fmt"
)

var (
	ErrCounterUninitialized = errors.New("counter: not initialized")
	ErrPaymentNotFound      = errors.New("payment: payment not found")
)

// InvalidInputError is a client-correctable validation failure. Reason is
// safe to return to the caller verbatim.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}

// SoldOutError reports that a tier has no remaining capacity.
type SoldOutError struct {
	TicketType string
}

func (e *SoldOutError) Error() string {
	return fmt.Sprintf("Ticket %s Sold Out", e.TicketType)
}
