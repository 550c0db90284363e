package models

type TicketType string

const (
	TicketA TicketType = "A"
	TicketB TicketType = "B"
	TicketC TicketType = "C"
)

func ParseTicketType(s string) (TicketType, bool) {
	switch TicketType(s) {
	case TicketA, TicketB, TicketC:
		return TicketType(s), true
	}
	return "", false
}

// CounterSnapshot is a point-in-time read of the singleton sold-count
// record. Pricing decisions are made against a snapshot; the reservation
// itself goes through the storage layer's atomic increment.
type CounterSnapshot struct {
	SoldA int `json:"sold_a"`
	SoldB int `json:"sold_b"`
	SoldC int `json:"sold_c"`
}

func (s CounterSnapshot) Sold(t TicketType) int {
	switch t {
	case TicketA:
		return s.SoldA
	case TicketB:
		return s.SoldB
	case TicketC:
		return s.SoldC
	}
	return 0
}
