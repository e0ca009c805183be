package meeting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
	"github.com/johnquangdev/meeting-quality/pkg/jobcontext"
)

const (
	activationJobType = "meeting_activation"
	activationLockKey = "meeting-quality:lock:activation"
)

// Locker grants a short lived lock shared by every instance. ok is false when another
// holder owns the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// SweepObserver records sweep outcomes
type SweepObserver interface {
	SweepCompleted(activated int, duration time.Duration, err error)
}

// ActivationSweeper periodically flips upcoming meetings whose date has passed to active
type ActivationSweeper struct {
	meetingRepo repositories.MeetingRepository
	notifier    Notifier
	locker      Locker
	observer    SweepObserver
	interval    time.Duration
	lockTTL     time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// SweeperConfig configures an ActivationSweeper
type SweeperConfig struct {
	Interval time.Duration
	LockTTL  time.Duration
}

// NewActivationSweeper creates the sweeper. notifier and observer may be nil.
func NewActivationSweeper(
	meetingRepo repositories.MeetingRepository,
	notifier Notifier,
	locker Locker,
	observer SweepObserver,
	cfg SweeperConfig,
	logger *zap.Logger,
) *ActivationSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.LockTTL <= 0 || cfg.LockTTL >= cfg.Interval {
		cfg.LockTTL = cfg.Interval * 5 / 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivationSweeper{
		meetingRepo: meetingRepo,
		notifier:    notifier,
		locker:      locker,
		observer:    observer,
		interval:    cfg.Interval,
		lockTTL:     cfg.LockTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the sweep loop
func (s *ActivationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("activation sweeper already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})

	s.logger.Info("🚀 Starting meeting activation sweeper",
		zap.Duration("interval", s.interval),
	)

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop waits for the running sweep to finish
func (s *ActivationSweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("activation sweeper not running")
	}
	close(s.stopChan)
	s.wg.Wait()
	s.running = false

	s.logger.Info("✅ Meeting activation sweeper stopped")
	return nil
}

func (s *ActivationSweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Warn("Meeting activation sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single sweep and returns the ids it activated. A sweep that cannot
// take the lock is skipped.
func (s *ActivationSweeper) RunOnce(ctx context.Context) ([]uuid.UUID, error) {
	start := time.Now()

	release, ok, err := s.locker.TryLock(ctx, activationLockKey, s.lockTTL)
	if err != nil {
		s.observe(0, start, err)
		return nil, fmt.Errorf("failed to acquire activation lock: %w", err)
	}
	if !ok {
		s.logger.Debug("Activation sweep skipped, lock held elsewhere")
		return nil, nil
	}
	defer release()

	jobCtx, cancel := jobcontext.JobBeginWithOptions(ctx, uuid.New(), activationJobType, 0, jobcontext.Options{
		Timeout:    s.lockTTL,
		MaxRetries: 3,
		BaseDelay:  time.Second,
	})
	defer cancel()

	var activated []uuid.UUID
	err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		ids, err := s.meetingRepo.ActivateDue(ctx, s.now())
		if err != nil {
			return fmt.Errorf("failed to activate due meetings: %w", err)
		}
		activated = ids
		return nil
	})
	s.observe(len(activated), start, err)
	if err != nil {
		return nil, err
	}

	for _, id := range activated {
		s.announce(ctx, id)
	}
	if len(activated) > 0 {
		s.logger.Info("Activated upcoming meetings", zap.Int("count", len(activated)))
	}
	return activated, nil
}

func (s *ActivationSweeper) announce(ctx context.Context, meetingID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	phase := entities.PhaseEmotionalEvaluation
	if m, err := s.meetingRepo.FindByID(ctx, meetingID); err == nil {
		phase = m.CurrentPhase
	} else {
		s.logger.Warn("Failed to reload activated meeting",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
	s.notifier.PhaseChanged(meetingID, phase, entities.MeetingStatusActive)
}

func (s *ActivationSweeper) observe(activated int, start time.Time, err error) {
	if s.observer != nil {
		s.observer.SweepCompleted(activated, time.Since(start), err)
	}
}
