// Package numerator provides the PostgreSQL implementation of unit counters.
// This is the infrastructure layer - it implements core/numerator.Allocator.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	corenumerator "mobilebill/internal/core/numerator"
	"mobilebill/internal/metrics"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const nextSQL = `
	INSERT INTO product_counters (key, last_counter, updated_at)
	VALUES ($1, 1, now())
	ON CONFLICT (key) DO UPDATE
	SET last_counter = product_counters.last_counter + 1, updated_at = now()
	RETURNING last_counter`

const currentSQL = `SELECT last_counter FROM product_counters WHERE key = $1`

// Service allocates counters with one UPSERT per call (strict strategy).
// Calls run outside business transactions so an issued value is never rolled back.
type Service struct {
	querier Querier
}

// Ensure compile-time interface compliance.
var _ corenumerator.Allocator = (*Service)(nil)

// New creates a new numerator service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Next implements corenumerator.Allocator.
func (s *Service) Next(ctx context.Context, key string) (int64, error) {
	if s == nil || s.querier == nil {
		return 0, fmt.Errorf("numerator service is not initialized")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, fmt.Errorf("counter key is empty")
	}

	var num int64
	if err := s.querier.QueryRow(ctx, nextSQL, key).Scan(&num); err != nil {
		return 0, fmt.Errorf("next counter %q: %w", key, err)
	}
	metrics.CountersIssued.Inc()
	return num, nil
}

// Current implements corenumerator.Allocator.
func (s *Service) Current(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, currentSQL, key).Scan(&num)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("current counter %q: %w", key, err)
	}
	return num, nil
}
