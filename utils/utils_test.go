package utils

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(4)

	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]+$`), code)
}

func TestGenerateCode_Unique(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := GenerateCode(8)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_PropagatesErrors(t *testing.T) {
	cb := NewCircuitBreaker("test")
	storeErr := errors.New("record store down")

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return nil, storeErr
	})

	assert.ErrorIs(t, err, storeErr)
}

func TestCircuitBreaker_OpensAfterSustainedFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	storeErr := errors.New("record store down")

	for i := 0; i < 100; i++ {
		cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, storeErr
		})
	}

	require.Equal(t, StateOpen, cb.State())

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "should not run", nil
	})

	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestCircuitBreaker_StaysClosedUnderMixedLoad(t *testing.T) {
	cb := NewCircuitBreaker("test")
	storeErr := errors.New("record store down")

	// Below the failure ratio: breaker must not trip
	for i := 0; i < 100; i++ {
		cb.Execute(context.Background(), func() (interface{}, error) {
			if i%2 == 0 {
				return nil, storeErr
			}
			return "ok", nil
		})
	}

	assert.Equal(t, StateClosed, cb.State())
}
