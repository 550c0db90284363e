package services

import (
	"context"
	"strconv"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"ticket-backend/internal/status"
	"ticket-backend/models"
)

// PaymentStore persists one record per purchase attempt. Records are created
// by allocation, updated once by verification and never deleted.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) (string, error)
	AttachReference(ctx context.Context, id, utr string, st models.PaymentStatus) error
	MarkConfirmed(ctx context.Context, id string) error
	TypeSummary(ctx context.Context) ([]models.TypeSummary, error)
}

// RecordPaymentStore keeps payments in the PocketBase "payments" collection.
type RecordPaymentStore struct {
	app core.App
}

func NewRecordPaymentStore(app core.App) *RecordPaymentStore {
	return &RecordPaymentStore{app: app}
}

func (s *RecordPaymentStore) Create(ctx context.Context, p *models.Payment) (string, error) {
	collection, err := s.app.FindCollectionByNameOrId("payments")
	if err != nil {
		return "", err
	}

	record := core.NewRecord(collection)
	record.Set("name", p.Name)
	record.Set("dept", p.Dept)
	record.Set("student_id", p.StudentID)
	record.Set("phone", p.Phone)
	record.Set("ticket_type", string(p.TicketType))
	record.Set("price", p.Price)
	record.Set("ref_code", p.RefCode)
	record.Set("status", string(models.StatusPending))

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return "", err
	}

	p.ID = record.Id
	p.Status = models.StatusPending

	return record.Id, nil
}

func (s *RecordPaymentStore) AttachReference(ctx context.Context, id, utr string, st models.PaymentStatus) error {
	record, err := s.app.FindRecordById("payments", id)
	if err != nil {
		return status.ErrPaymentNotFound
	}

	record.Set("utr", utr)
	record.Set("status", string(st))

	return s.app.SaveWithContext(ctx, record)
}

func (s *RecordPaymentStore) MarkConfirmed(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById("payments", id)
	if err != nil {
		return status.ErrPaymentNotFound
	}

	record.Set("status", string(models.StatusConfirmed))

	return s.app.SaveWithContext(ctx, record)
}

// TypeSummary aggregates sold count and revenue per tier for the admin
// dashboard.
func (s *RecordPaymentStore) TypeSummary(ctx context.Context) ([]models.TypeSummary, error) {
	var rows []dbx.NullStringMap
	err := s.app.DB().NewQuery(
		"SELECT ticket_type, COUNT(*) AS sold, COALESCE(SUM(price), 0) AS revenue FROM payments GROUP BY ticket_type",
	).All(&rows)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.TypeSummary, 0, len(rows))
	for _, row := range rows {
		sold, _ := strconv.Atoi(row["sold"].String)
		revenue, _ := strconv.Atoi(row["revenue"].String)

		summaries = append(summaries, models.TypeSummary{
			TicketType: models.TicketType(row["ticket_type"].String),
			Sold:       sold,
			Revenue:    revenue,
		})
	}

	return summaries, nil
}
