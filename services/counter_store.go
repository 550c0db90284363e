package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ticket-backend/internal/status"
	"ticket-backend/models"
)

// The singleton sold-count record. One hash, one field per tier, shared by
// every service instance.
const counterKey = "tickets:counter"

// boundedIncrLua increments a tier field only while it is below capacity.
// Returns the new count, -1 when the field is missing, -2 when capacity is
// already reached.
const boundedIncrLua = `local c = redis.call('HGET', KEYS[1], ARGV[1])
if not c then return -1 end
if tonumber(c) >= tonumber(ARGV[2]) then return -2 end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)`

type CounterStore struct {
	Redis *redis.Client
}

func NewCounterStore(redisClient *redis.Client) *CounterStore {
	return &CounterStore{Redis: redisClient}
}

func counterField(t models.TicketType) string {
	switch t {
	case models.TicketA:
		return "sold_a"
	case models.TicketB:
		return "sold_b"
	case models.TicketC:
		return "sold_c"
	}
	return ""
}

// EnsureInitialized creates the counter record with all counts zero when it
// does not exist yet. HSETNX makes it a no-op on every later start, so it is
// safe to run on each deployment.
func (s *CounterStore) EnsureInitialized(ctx context.Context) error {
	for _, t := range []models.TicketType{models.TicketA, models.TicketB, models.TicketC} {
		if err := s.Redis.HSetNX(ctx, counterKey, counterField(t), 0).Err(); err != nil {
			return fmt.Errorf("counter init: %w", err)
		}
	}
	return nil
}

// Snapshot reads the current sold counts. An empty hash means the startup
// initializer never ran against this storage.
func (s *CounterStore) Snapshot(ctx context.Context) (models.CounterSnapshot, error) {
	var snap models.CounterSnapshot

	fields, err := s.Redis.HGetAll(ctx, counterKey).Result()
	if err != nil {
		return snap, err
	}
	if len(fields) == 0 {
		return snap, status.ErrCounterUninitialized
	}

	snap.SoldA, _ = strconv.Atoi(fields["sold_a"])
	snap.SoldB, _ = strconv.Atoi(fields["sold_b"])
	snap.SoldC, _ = strconv.Atoi(fields["sold_c"])

	return snap, nil
}

// Increment adds one to a tier's sold count. The add happens inside Redis,
// so concurrent reservations never lose updates.
func (s *CounterStore) Increment(ctx context.Context, t models.TicketType) (int64, error) {
	return s.Redis.HIncrBy(ctx, counterKey, counterField(t), 1).Result()
}

// BoundedIncrement adds one to a tier's sold count only while it is below
// capacity, as a single atomic step. This closes the window between the
// pricing read and the reservation that plain Increment leaves open.
func (s *CounterStore) BoundedIncrement(ctx context.Context, t models.TicketType, capacity int) (int64, error) {
	res, err := s.Redis.Eval(ctx, boundedIncrLua, []string{counterKey}, counterField(t), capacity).Result()
	if err != nil {
		return 0, err
	}

	n, ok := res.(int64)
	if !ok {
		return 0, fmt.Errorf("counter: unexpected eval result %T", res)
	}

	switch n {
	case -1:
		return 0, status.ErrCounterUninitialized
	case -2:
		return 0, &status.SoldOutError{TicketType: string(t)}
	}

	return n, nil
}
