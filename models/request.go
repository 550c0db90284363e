package models

import (
	"regexp"

	"ticket-backend/internal/status"
)

// Indian mobile number: 10 digits, leading digit 6-9.
var phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

type BuyTicketRequest struct {
	TicketType string `json:"ticketType"`
	Name       string `json:"name"`
	Dept       string `json:"dept"`
	StudentID  string `json:"studentId"`
	Phone      string `json:"phone"`
}

// Validate checks the request and returns the parsed tier. All fields are
// required; the phone format and ticket type get their own error messages.
func (r *BuyTicketRequest) Validate() (TicketType, *status.InvalidInputError) {
	if r.TicketType == "" || r.Name == "" || r.Dept == "" || r.StudentID == "" || r.Phone == "" {
		return "", &status.InvalidInputError{Reason: "Missing user details"}
	}

	if !phonePattern.MatchString(r.Phone) {
		return "", &status.InvalidInputError{Reason: "Invalid phone number"}
	}

	t, ok := ParseTicketType(r.TicketType)
	if !ok {
		return "", &status.InvalidInputError{Reason: "Invalid ticket type"}
	}

	return t, nil
}

type ConfirmPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	UTR       string `json:"utr"`
}

func (r *ConfirmPaymentRequest) Validate() *status.InvalidInputError {
	if r.PaymentID == "" || r.UTR == "" {
		return &status.InvalidInputError{Reason: "Missing payment details"}
	}
	return nil
}
