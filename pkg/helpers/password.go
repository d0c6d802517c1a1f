package helpers

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher hashes and verifies passwords with bcrypt. The salt and cost
// are embedded in every hash, so Verify needs nothing but the stored string.
// Concurrent hashing is bounded so a burst of logins cannot starve the CPU.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher returns a hasher using the given cost. maxConcurrent <= 0
// defaults to the number of CPUs.
func NewBcryptHasher(cost, maxConcurrent int) (*BcryptHasher, error) {
	if cost < bcrypt.DefaultCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.DefaultCost, bcrypt.MaxCost)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(int64(maxConcurrent))}, nil
}

// Cost reports the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash hashes the plain text password using bcrypt
func (h *BcryptHasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash with a plain password. The comparison is
// bcrypt's own constant-time one. A mismatch or a malformed hash yields
// false with a nil error; only context cancellation is reported as an error.
func (h *BcryptHasher) Verify(ctx context.Context, plain, hash string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil, nil
}
