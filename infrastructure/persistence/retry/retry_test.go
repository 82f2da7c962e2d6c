package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hexagonal/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type publicationFailure struct{ cause error }

func (e publicationFailure) Error() string {
	return "publication failed: " + e.cause.Error()
}

func (e publicationFailure) Unwrap() error { return e.cause }

func (e publicationFailure) PublicationFailed() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"optimistic lock", shared.NewOptimisticLockError("User", "1", 3), true},
		{"wrapped optimistic lock", fmt.Errorf("save: %w", shared.ErrOptimisticLockConflict), true},
		{"mysql deadlock", &mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"mysql lock timeout", &mysqlDriver.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, true},
		{"mysql duplicate", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, false},
		{"postgres deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"postgres serialization", &pgconn.PgError{Code: "40001"}, true},
		{"postgres lock timeout", &pgconn.PgError{Code: "55P03"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"duplicated key", gorm.ErrDuplicatedKey, false},
		{"not found", shared.NewNotFoundError("User", "1"), false},
		{"publication failure", publicationFailure{cause: shared.ErrOptimisticLockConflict}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err, DefaultConfig); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
	t.Log("✓ retryable error classification passed")
}

func TestIsRetryableErrorRespectsSwitches(t *testing.T) {
	cfg := DefaultConfig
	cfg.RetryOnDeadlock = false
	cfg.RetryOnConcurrentModification = false

	if IsRetryableError(&mysqlDriver.MySQLError{Number: 1213}, cfg) {
		t.Error("deadlock retry is disabled")
	}
	if IsRetryableError(shared.ErrOptimisticLockConflict, cfg) {
		t.Error("concurrent modification retry is disabled")
	}

	custom := errors.New("custom transient")
	cfg.RetryPredicate = func(err error) bool { return errors.Is(err, custom) }
	if !IsRetryableError(custom, cfg) {
		t.Error("predicate must make the error retryable")
	}
}

func TestExponentialBackoff(t *testing.T) {
	cfg := Config{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, BackoffFactor: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 40 * time.Millisecond},
		{4, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := ExponentialBackoffWithJitter(tt.attempt, cfg); got != tt.want {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.want)
		}
	}

	cfg.JitterEnabled = true
	got := ExponentialBackoffWithJitter(1, cfg)
	if got < 8*time.Millisecond || got > 12*time.Millisecond {
		t.Errorf("jittered delay %v outside ±20%%", got)
	}
}

func TestExecuteWithRetry(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(ctx, cfg, func(context.Context) error {
			calls++
			if calls < 3 {
				return shared.ErrOptimisticLockConflict
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("expected success after 3 calls, got %d (%v)", calls, err)
		}
	})

	t.Run("stops at max attempts", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(ctx, cfg, func(context.Context) error {
			calls++
			return shared.ErrOptimisticLockConflict
		})
		if !errors.Is(err, shared.ErrOptimisticLockConflict) || calls != cfg.MaxAttempts {
			t.Errorf("expected %d calls, got %d (%v)", cfg.MaxAttempts, calls, err)
		}
	})

	t.Run("non retryable returns immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := ExecuteWithRetry(ctx, cfg, func(context.Context) error {
			calls++
			return boom
		})
		if !errors.Is(err, boom) || calls != 1 {
			t.Errorf("expected 1 call, got %d (%v)", calls, err)
		}
	})

	t.Run("disabled runs once", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false
		calls := 0
		_ = ExecuteWithRetry(ctx, disabled, func(context.Context) error {
			calls++
			return shared.ErrOptimisticLockConflict
		})
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("zero max attempts runs once", func(t *testing.T) {
		zero := cfg
		zero.MaxAttempts = 0
		calls := 0
		_ = ExecuteWithRetry(ctx, zero, func(context.Context) error {
			calls++
			return shared.ErrOptimisticLockConflict
		})
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := ExecuteWithRetry(cancelled, cfg, func(context.Context) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
