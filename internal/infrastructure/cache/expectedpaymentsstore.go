package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawhaven/pawhaven/internal/application/subscription/usecases"
)

const (
	expectedPaymentsPrefix = "payments:expected:"
	expectedPaymentsTTL    = 15 * time.Minute
)

// ExpectedPaymentsStore caches each user's projection of upcoming recurring
// charges. The projection is rebuilt from the database on a miss, so the TTL
// only bounds staleness after writes that bypass invalidation.
type ExpectedPaymentsStore struct {
	client *redis.Client
}

func NewExpectedPaymentsStore(client *redis.Client) *ExpectedPaymentsStore {
	return &ExpectedPaymentsStore{client: client}
}

func (s *ExpectedPaymentsStore) Get(ctx context.Context, userID uint) ([]usecases.ExpectedPayment, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read expected payments: %w", err)
	}

	var payments []usecases.ExpectedPayment
	if err := json.Unmarshal(raw, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode expected payments: %w", err)
	}
	return payments, nil
}

func (s *ExpectedPaymentsStore) Set(ctx context.Context, userID uint, payments []usecases.ExpectedPayment) error {
	raw, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("failed to encode expected payments: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID), raw, expectedPaymentsTTL).Err(); err != nil {
		return fmt.Errorf("failed to store expected payments: %w", err)
	}
	return nil
}

func (s *ExpectedPaymentsStore) Invalidate(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate expected payments: %w", err)
	}
	return nil
}

func (s *ExpectedPaymentsStore) key(userID uint) string {
	return expectedPaymentsPrefix + strconv.FormatUint(uint64(userID), 10)
}
