package models

import (
	"time"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusConfirmed PaymentStatus = "CONFIRMED"
)

type Payment struct {
	ID         string        `json:"payment_id"`
	Name       string        `json:"name"`
	Dept       string        `json:"dept"`
	StudentID  string        `json:"student_id"`
	Phone      string        `json:"phone"`
	TicketType TicketType    `json:"ticket_type"`
	Price      int           `json:"price"`
	UTR        string        `json:"utr,omitempty"`
	RefCode    string        `json:"ref_code"`
	Status     PaymentStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// TypeSummary is one row of the per-tier sales aggregate used by the admin
// stats endpoint.
type TypeSummary struct {
	TicketType TicketType `json:"ticket_type"`
	Sold       int        `json:"sold"`
	Revenue    int        `json:"revenue"`
}
