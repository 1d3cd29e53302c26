package models

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_IsKind(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("videos.list: %w", &ProviderError{Kind: ErrTransient, Status: 503, Err: cause})

	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrAuth)

	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, 503, pe.Status)
}

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{Kind: ErrQuotaExceeded, Status: 403, Reason: "quotaExceeded"}
	assert.Equal(t, "quota exceeded (quotaExceeded): status 403", err.Error())

	err = &ProviderError{Kind: ErrNotFound}
	assert.Equal(t, "resource not found", err.Error())
}

func TestPoolExhaustedError(t *testing.T) {
	err := fmt.Errorf("acquire: %w", &PoolExhaustedError{Total: 3, Available: 0})

	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Contains(t, err.Error(), "0 of 3 keys available")
}

func TestInsufficientQuotaError(t *testing.T) {
	err := fmt.Errorf("search.list: %w", &InsufficientQuotaError{Cost: 100, Best: 50, Available: 1})

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ErrPoolExhausted)
	assert.True(t, IsAbsorbable(err))
	assert.Contains(t, err.Error(), "need 100 units, best key has 50")
}

func TestIsAbsorbable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"quota", &ProviderError{Kind: ErrQuotaExceeded}, true},
		{"auth", &ProviderError{Kind: ErrAuth}, true},
		{"transient", fmt.Errorf("chunk 2: %w", ErrTransient), true},
		{"not found", &ProviderError{Kind: ErrNotFound}, true},
		{"insufficient quota", &InsufficientQuotaError{Cost: 100}, true},
		{"pool exhausted", &PoolExhaustedError{Total: 1}, false},
		{"unclassified", errors.New("unexpected payload"), false},
		{"cancelled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAbsorbable(tt.err))
		})
	}
}
