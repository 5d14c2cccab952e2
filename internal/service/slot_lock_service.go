package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dental-scheduling/internal/observability/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Errors
// =============================================================================

// ErrSlotLocked is returned when another booking for the same doctor and day
// holds the lock for longer than the retry budget
var ErrSlotLocked = errors.New("another booking for this doctor is in progress")

// releaseLockScript deletes the lock key only while it still holds our token.
// A holder whose TTL expired must not release a lock taken over by someone else.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// =============================================================================
// Constants
// =============================================================================

const (
	// Redis key prefix for booking locks: appointment:lock:<doctorID>:<YYYY-MM-DD>
	RedisBookingLockKeyPrefix = "appointment:lock:"

	// Timeout for the release call, independent of the request context
	redisReleaseTimeout = 2 * time.Second
)

// =============================================================================
// Types
// =============================================================================

// SlotLocker serializes bookings for one doctor on one calendar day
type SlotLocker interface {
	Acquire(ctx context.Context, doctorID uuid.UUID, day time.Time) (release func(), err error)
}

// SlotLockConfig tunes lock expiry and contention handling
type SlotLockConfig struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

// SlotLockService is a Redis-backed SlotLocker.
//
// The lock narrows the race window between concurrent bookings; the database
// transaction that re-checks conflicts stays the source of truth.
type SlotLockService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	metrics     *metrics.SchedulingMetrics
	cfg         SlotLockConfig
}

// =============================================================================
// Constructor
// =============================================================================

func NewSlotLockService(redisClient *redis.Client, log *logrus.Logger, m *metrics.SchedulingMetrics, cfg SlotLockConfig) *SlotLockService {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	return &SlotLockService{
		redisClient: redisClient,
		log:         log,
		metrics:     m,
		cfg:         cfg,
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Acquire takes the lock for doctorID on day's calendar date, retrying up to
// cfg.Retries times. The returned release func is safe to call more than once.
func (s *SlotLockService) Acquire(ctx context.Context, doctorID uuid.UUID, day time.Time) (func(), error) {
	key := BookingLockKey(doctorID, day)
	token := uuid.NewString()

	for attempt := 0; ; attempt++ {
		ok, err := s.redisClient.SetNX(ctx, key, token, s.cfg.TTL).Result()
		if err != nil {
			s.metrics.ObserveLock("error")
			s.log.Warnf("Failed to acquire booking lock %s: %+v", key, err)
			return nil, fmt.Errorf("acquire booking lock %s: %w", key, err)
		}
		if ok {
			s.metrics.ObserveLock("acquired")
			s.log.Debugf("Acquired booking lock %s", key)
			return s.releaseFunc(key, token), nil
		}
		if attempt >= s.cfg.Retries {
			s.metrics.ObserveLock("contended")
			return nil, ErrSlotLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.RetryDelay):
		}
	}
}

// BookingLockKey returns the Redis key guarding bookings for a doctor on a date
func BookingLockKey(doctorID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", RedisBookingLockKeyPrefix, doctorID, day.Format("2006-01-02"))
}

// =============================================================================
// Private Helper Methods
// =============================================================================

func (s *SlotLockService) releaseFunc(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		ctx, cancel := context.WithTimeout(context.Background(), redisReleaseTimeout)
		defer cancel()

		deleted, err := releaseLockScript.Run(ctx, s.redisClient, []string{key}, token).Int()
		if err != nil {
			s.log.Warnf("Failed to release booking lock %s: %+v", key, err)
			return
		}
		if deleted == 0 {
			s.log.Warnf("Booking lock %s expired before release", key)
		}
	}
}
