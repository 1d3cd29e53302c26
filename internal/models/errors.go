package models

import (
	"errors"
	"fmt"
)

var (
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrAuth                = errors.New("credential rejected")
	ErrTransient           = errors.New("transient provider error")
	ErrNotFound            = errors.New("resource not found")
	ErrPoolExhausted       = errors.New("key pool exhausted")
	ErrMalformedBaseline   = errors.New("malformed baseline")
	ErrClassificationInput = errors.New("unparseable classification input")
)

// ProviderError is a classified failure returned by a data provider adapter.
type ProviderError struct {
	Kind   error
	Status int
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Is(target error) bool {
	return target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PoolExhaustedError reports that no credential can serve another call.
type PoolExhaustedError struct {
	Total     int
	Available int
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("key pool exhausted: %d of %d keys available", e.Available, e.Total)
}

func (e *PoolExhaustedError) Is(target error) bool {
	return target == ErrPoolExhausted
}

// InsufficientQuotaError reports that usable credentials remain but none has
// cost units left. It matches ErrQuotaExceeded, so a cycle drops the affected
// operation and carries on with cheaper ones.
type InsufficientQuotaError struct {
	Cost      int64
	Best      int64
	Available int
}

func (e *InsufficientQuotaError) Error() string {
	return fmt.Sprintf("insufficient quota for operation: need %d units, best key has %d (%d keys available)", e.Cost, e.Best, e.Available)
}

func (e *InsufficientQuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// IsAbsorbable reports whether a cycle may drop the affected entities and continue.
func IsAbsorbable(err error) bool {
	if err == nil || errors.Is(err, ErrPoolExhausted) {
		return false
	}
	return errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrNotFound)
}
