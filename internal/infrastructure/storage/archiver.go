package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-quality/internal/usecase/meeting"
)

const breakerName = "report-storage"

// ObjectStore is the blob API the archiver needs
type ObjectStore interface {
	PutObject(ctx context.Context, objectName string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ReportArchiver uploads exported reports behind a circuit breaker with retries.
type ReportArchiver struct {
	store      ObjectStore
	cb         *gobreaker.CircuitBreaker[any]
	expiry     time.Duration
	maxRetries uint64
	baseDelay  time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

var _ meeting.ReportArchiver = (*ReportArchiver)(nil)

// NewReportArchiver creates an archiver issuing URLs valid for expiry
func NewReportArchiver(store ObjectStore, expiry time.Duration, logger *zap.Logger) *ReportArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if expiry <= 0 {
		expiry = time.Hour
	}

	metrics.SetCircuitBreakerState(breakerName, 0)
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetCircuitBreakerState(name, stateValue(to))
		},
	})

	return &ReportArchiver{
		store:      store,
		cb:         cb,
		expiry:     expiry,
		maxRetries: 2,
		baseDelay:  200 * time.Millisecond,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Archive uploads payload as JSON and returns a presigned download location.
func (a *ReportArchiver) Archive(ctx context.Context, objectKey string, payload []byte) (*meeting.ArchivedReport, error) {
	if err := a.call(ctx, "put_object", func() error {
		return a.store.PutObject(ctx, objectKey, payload, "application/json")
	}); err != nil {
		return nil, err
	}

	var url string
	if err := a.call(ctx, "presign", func() error {
		var err error
		url, err = a.store.PresignedURL(ctx, objectKey, a.expiry)
		return err
	}); err != nil {
		return nil, err
	}

	a.logger.Info("report archived", zap.String("object_key", objectKey), zap.Int("bytes", len(payload)))
	return &meeting.ArchivedReport{
		ObjectKey: objectKey,
		URL:       url,
		ExpiresAt: a.now().Add(a.expiry),
	}, nil
}

// call runs op through the breaker, retrying transient failures with exponential backoff.
func (a *ReportArchiver) call(ctx context.Context, operation string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.baseDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, a.maxRetries), ctx)

	attempt := func() error {
		start := time.Now()
		_, err := a.cb.Execute(func() (any, error) {
			return nil, op()
		})
		metrics.RecordStorageOperation(operation, time.Since(start), err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		return fmt.Errorf("%s failed: %w", operation, err)
	}
	return nil
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
