package cache

import (
	"context"
	"time"

	"bakeshop/backend/internal/domain"
)

type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.ExpiryAlertReport, bool, error)
	Set(ctx context.Context, key string, value *domain.ExpiryAlertReport, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*domain.ExpiryAlertReport, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *domain.ExpiryAlertReport, _ time.Duration) error {
	return nil
}
