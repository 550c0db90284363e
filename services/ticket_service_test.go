package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-backend/config"
	"ticket-backend/internal/status"
	"ticket-backend/internal/upi"
	"ticket-backend/models"
)

// Mock PaymentStore for allocation tests
type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) Create(ctx context.Context, p *models.Payment) (string, error) {
	args := m.Called(ctx, p)
	if args.Error(1) == nil {
		p.ID = args.String(0)
		p.Status = models.StatusPending
	}
	return args.String(0), args.Error(1)
}

func (m *MockPaymentStore) AttachReference(ctx context.Context, id, utr string, st models.PaymentStatus) error {
	args := m.Called(ctx, id, utr, st)
	return args.Error(0)
}

func (m *MockPaymentStore) MarkConfirmed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentStore) TypeSummary(ctx context.Context) ([]models.TypeSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TypeSummary), args.Error(1)
}

func testTierConfig() *config.Config {
	return &config.Config{
		TicketA: config.TierConfig{Capacity: 150, BasePrice: 500, StepCutoff: 50, StepPrice: 600},
		TicketB: config.TierConfig{Capacity: 300, BasePrice: 400},
		TicketC: config.TierConfig{Capacity: 150, BasePrice: 300},
	}
}

func setupTestTicketService(cfg *config.Config) (*TicketService, redismock.ClientMock, *MockPaymentStore) {
	db, redisMock := redismock.NewClientMock()
	store := &MockPaymentStore{}

	issuer := upi.NewIssuer(upi.Config{
		PayeeVPA:  "merchant@okicici",
		PayeeName: "Merchant",
		Currency:  "INR",
		Note:      "Event Ticket",
		QRSize:    128,
	})

	service := NewTicketService(NewCounterStore(db), store, issuer, cfg)

	return service, redisMock, store
}

func buyRequest(ticketType string) *models.BuyTicketRequest {
	return &models.BuyTicketRequest{
		TicketType: ticketType,
		Name:       "Asha Verma",
		Dept:       "CSE",
		StudentID:  "21CS042",
		Phone:      "9876543210",
	}
}

func TestTicketService_RequestTicket_TierABasePrice(t *testing.T) {
	service, redisMock, store := setupTestTicketService(testTierConfig())

	redisMock.ExpectHGetAll(counterKey).SetVal(map[string]string{
		"sold_a": "0", "sold_b": "0", "sold_c": "0",
	})
	redisMock.ExpectHIncrBy(counterKey, "sold_a", 1).SetVal(1)

	var created *models.Payment
	store.On("Create", mock.Anything, mock.AnythingOfType("*models.Payment")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Payment)
		}).
		Return("rec_001", nil)

	grant, err := service.RequestTicket(context.Background(), buyRequest("A"))

	require.NoError(t, err)
	assert.Equal(t, 500, grant.Price)
	assert.Equal(t, "rec_001", grant.PaymentID)
	assert.True(t, strings.HasPrefix(grant.QR, "data:image/png;base64,"))

	require.NotNil(t, created)
	assert.Equal(t, models.TicketA, created.TicketType)
	assert.Equal(t, 500, created.Price)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Len(t, created.RefCode, 8)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestTicketService_RequestTicket_TierAStepPrice(t *testing.T) {
	tests := []struct {
		name  string
		soldA string
		price int
	}{
		{"last base-price unit", "49", 500},
		{"first step-price unit", "50", 600},
		{"last step-price unit", "149", 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, redisMock, store := setupTestTicketService(testTierConfig())

			redisMock.ExpectHGetAll(counterKey).SetVal(map[string]string{
				"sold_a": tt.soldA, "sold_b": "0", "sold_c": "0",
			})
			redisMock.ExpectHIncrBy(counterKey, "sold_a", 1).SetVal(1)

			store.On("Create", mock.Anything, mock.Anything).Return("rec_002", nil)

			grant, err := service.RequestTicket(context.Background(), buyRequest("A"))

			require.NoError(t, err)
			assert.Equal(t, tt.price, grant.Price)
			assert.NoError(t, redisMock.ExpectationsWereMet())
		})
	}
}

func TestTicketService_RequestTicket_SoldOut(t *testing.T) {
	tests := []struct {
		ticketType string
		counts     map[string]string
		message    string
	}{
		{"A", map[string]string{"sold_a": "150", "sold_b": "0", "sold_c": "0"}, "Ticket A Sold Out"},
		{"B", map[string]string{"sold_a": "0", "sold_b": "300", "sold_c": "0"}, "Ticket B Sold Out"},
		{"C", map[string]string{"sold_a": "0", "sold_b": "0", "sold_c": "150"}, "Ticket C Sold Out"},
	}

	for _, tt := range tests {
		t.Run(tt.ticketType, func(t *testing.T) {
			service, redisMock, store := setupTestTicketService(testTierConfig())

			redisMock.ExpectHGetAll(counterKey).SetVal(tt.counts)

			_, err := service.RequestTicket(context.Background(), buyRequest(tt.ticketType))

			var soldOut *status.SoldOutError
			require.ErrorAs(t, err, &soldOut)
			assert.Equal(t, tt.message, soldOut.Error())

			// No increment, no payment record
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.NoError(t, redisMock.ExpectationsWereMet())
		})
	}
}

func TestTicketService_RequestTicket_FlatPriceTiers(t *testing.T) {
	tests := []struct {
		ticketType string
		field      string
		sold       string
		price      int
	}{
		{"B", "sold_b", "299", 400},
		{"C", "sold_c", "0", 300},
	}

	for _, tt := range tests {
		t.Run(tt.ticketType, func(t *testing.T) {
			service, redisMock, store := setupTestTicketService(testTierConfig())

			counts := map[string]string{"sold_a": "0", "sold_b": "0", "sold_c": "0"}
			counts[tt.field] = tt.sold
			redisMock.ExpectHGetAll(counterKey).SetVal(counts)
			redisMock.ExpectHIncrBy(counterKey, tt.field, 1).SetVal(1)

			store.On("Create", mock.Anything, mock.Anything).Return("rec_003", nil)

			grant, err := service.RequestTicket(context.Background(), buyRequest(tt.ticketType))

			require.NoError(t, err)
			assert.Equal(t, tt.price, grant.Price)
			assert.NoError(t, redisMock.ExpectationsWereMet())
		})
	}
}

func TestTicketService_RequestTicket_InvalidInput(t *testing.T) {
	service, redisMock, store := setupTestTicketService(testTierConfig())

	req := buyRequest("A")
	req.Phone = "12345"

	_, err := service.RequestTicket(context.Background(), req)

	var invalid *status.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Invalid phone number", invalid.Reason)

	// Rejected input touches neither store
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestTicketService_RequestTicket_UninitializedCounter(t *testing.T) {
	service, redisMock, store := setupTestTicketService(testTierConfig())

	redisMock.ExpectHGetAll(counterKey).SetVal(map[string]string{})

	_, err := service.RequestTicket(context.Background(), buyRequest("A"))

	assert.ErrorIs(t, err, status.ErrCounterUninitialized)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_RequestTicket_StrictCapacity(t *testing.T) {
	cfg := testTierConfig()
	cfg.StrictCapacity = true
	service, redisMock, store := setupTestTicketService(cfg)

	redisMock.ExpectHGetAll(counterKey).SetVal(map[string]string{
		"sold_a": "0", "sold_b": "299", "sold_c": "0",
	})
	redisMock.ExpectEval(boundedIncrLua, []string{counterKey}, "sold_b", 300).SetVal(int64(300))

	store.On("Create", mock.Anything, mock.Anything).Return("rec_004", nil)

	grant, err := service.RequestTicket(context.Background(), buyRequest("B"))

	require.NoError(t, err)
	assert.Equal(t, 400, grant.Price)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestTicketService_RequestTicket_StrictCapacityLostRace(t *testing.T) {
	cfg := testTierConfig()
	cfg.StrictCapacity = true
	service, redisMock, store := setupTestTicketService(cfg)

	// Snapshot still shows room, but the bounded increment finds the tier
	// exhausted by a concurrent reservation.
	redisMock.ExpectHGetAll(counterKey).SetVal(map[string]string{
		"sold_a": "0", "sold_b": "299", "sold_c": "0",
	})
	redisMock.ExpectEval(boundedIncrLua, []string{counterKey}, "sold_b", 300).SetVal(int64(-2))

	_, err := service.RequestTicket(context.Background(), buyRequest("B"))

	var soldOut *status.SoldOutError
	require.ErrorAs(t, err, &soldOut)
	assert.Equal(t, "B", soldOut.TicketType)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_RequestTicket_PaymentStoreFailure(t *testing.T) {
	service, redisMock, store := setupTestTicketService(testTierConfig())

	redisMock.ExpectHGetAll(counterKey).SetVal(map[string]string{
		"sold_a": "0", "sold_b": "0", "sold_c": "0",
	})
	redisMock.ExpectHIncrBy(counterKey, "sold_a", 1).SetVal(1)

	store.On("Create", mock.Anything, mock.Anything).Return("", errors.New("record store down"))

	_, err := service.RequestTicket(context.Background(), buyRequest("A"))

	// The reservation already happened; the caller sees a server error and
	// the counter keeps its increment (accepted drift).
	require.Error(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	store.AssertExpectations(t)
}
