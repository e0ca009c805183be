package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyJobStartTime KeyContext = "job_start_time"
	keyMaxRetries   KeyContext = "max_retries"
	keyBaseDelay    KeyContext = "base_delay"
)

const (
	defaultTimeout    = 5 * time.Minute
	defaultMaxRetries = 3
	defaultBaseDelay  = 5 * time.Second
	maxBackoff        = 60 * time.Second
)

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID        uuid.UUID
	JobType      string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// Options tunes a job run. Zero values fall back to defaults.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// JobBegin initializes a job context with metadata and a 5 minute timeout
func JobBegin(parentCtx context.Context, jobID uuid.UUID, jobType string, workerID int) (context.Context, context.CancelFunc) {
	return JobBeginWithOptions(parentCtx, jobID, jobType, workerID, Options{})
}

// JobBeginWithOptions is JobBegin with explicit timeout and retry settings
func JobBeginWithOptions(parentCtx context.Context, jobID uuid.UUID, jobType string, workerID int, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}

	ctx, cancel := context.WithTimeout(parentCtx, opts.Timeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxRetries, opts.MaxRetries)
	ctx = context.WithValue(ctx, keyBaseDelay, opts.BaseDelay)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd runs jobFunc with panic recovery, retrying retryable failures with exponential backoff.
// Returns error if job fails after all retries
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) error {
	maxRetries := GetMaxRetries(ctx)
	attempt := GetRetryAttempt(ctx)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = getBaseDelay(ctx)
	policy.MaxInterval = maxBackoff
	policy.MaxElapsedTime = 0

	var lastErr error
	operation := func() error {
		attemptCtx := SetRetryAttempt(ctx, attempt)
		attempt++

		if attemptCtx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("context cancelled before job execution: %w", attemptCtx.Err()))
		}

		err := runRecovered(attemptCtx, jobFunc)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryableError(err) {
			return backoff.Permanent(fmt.Errorf("non-retryable error: %w", err))
		}
		return err
	}

	retries := maxRetries - attempt - 1
	if retries < 0 {
		retries = 0
	}
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx))
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	if lastErr != nil && attempt >= maxRetries {
		return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
	}
	return err
}

func runRecovered(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()
	return jobFunc(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok {
		return defaultMaxRetries
	}
	return maxRetries
}

func getBaseDelay(ctx context.Context) time.Duration {
	d, ok := ctx.Value(keyBaseDelay).(time.Duration)
	if !ok {
		return defaultBaseDelay
	}
	return d
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:        jobID,
		JobType:      jobType,
		WorkerID:     GetWorkerID(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry
// Retryable errors include: network errors, timeouts, deadlocks, lock contention
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") || // deadlock_detected
		strings.Contains(errStr, "55p03") { // lock_not_available
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") ||
		strings.Contains(errStr, "service unavailable") {
		return true
	}

	return false
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// 2^attempt * baseDelay, max 60 seconds
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
