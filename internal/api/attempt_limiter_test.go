package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	limiter := newAttemptLimiter(1, time.Hour)
	limiter.now = func() time.Time { return now }
	key := "otp|127.0.0.1|a@x.com"

	now = now.Add(-2 * time.Hour)
	limiter.addFailure(key)
	now = now.Add(2 * time.Hour)
	if limiter.blocked(key) {
		t.Fatal("expected old attempt to be pruned from active window")
	}

	limiter.addFailure(key)
	if !limiter.blocked(key) {
		t.Fatal("expected one recent attempt to hit limit 1")
	}
	if limiter.blocked("otp|127.0.0.1|b@x.com") {
		t.Fatal("expected other emails to keep their own budget")
	}

	limiter.reset(key)
	if limiter.blocked(key) {
		t.Fatal("expected no attempts after reset")
	}
}

func TestAttemptLimiterDefaults(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(0, 0)
	if limiter.limit != defaultAttemptLimit || limiter.window != defaultAttemptWindow {
		t.Fatalf("unexpected defaults: limit=%d window=%s", limiter.limit, limiter.window)
	}
}

func TestOTPBudgetCapsOneEmailAcrossAddresses(t *testing.T) {
	t.Parallel()

	budget := newOTPBudget(2, 3, time.Hour)

	budget.addFailure("10.0.0.1", scopeCodeVerify, "a@x.com")
	budget.addFailure("10.0.0.2", scopeCodeVerify, "a@x.com")
	if budget.blocked("10.0.0.3", scopeCodeVerify, "a@x.com") {
		t.Fatal("expected a fresh address to have budget left below the email ceiling")
	}

	budget.addFailure("10.0.0.3", scopeCodeVerify, " A@X.com ")
	if !budget.blocked("10.0.0.4", scopeCodeVerify, "a@x.com") {
		t.Fatal("expected email ceiling to block every address")
	}
	if budget.blocked("10.0.0.4", scopeCodeVerify, "b@x.com") {
		t.Fatal("expected other emails to keep their own ceiling")
	}
	if budget.blocked("10.0.0.4", scopeCodeSend, "a@x.com") {
		t.Fatal("expected send scope to be counted apart from verify")
	}

	budget.reset("10.0.0.3", scopeCodeVerify, "a@x.com")
	if !budget.blocked("10.0.0.3", scopeCodeVerify, "a@x.com") {
		t.Fatal("expected a success from one address to leave the email ceiling in place")
	}
}

func TestOTPBudgetDefaultsEmailCeiling(t *testing.T) {
	t.Parallel()

	budget := newOTPBudget(0, 0, 0)
	if budget.perEmail.limit != defaultAttemptLimit*defaultEmailLimitFactor {
		t.Fatalf("unexpected email ceiling %d", budget.perEmail.limit)
	}
}

func TestAttemptLimiterSweepDropsStaleKeys(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	limiter := newAttemptLimiter(5, time.Minute)
	limiter.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		limiter.addFailure(key)
	}
	now = now.Add(2 * time.Minute)
	limiter.addFailure("d")

	limiter.sweep()
	if size := limiter.size(); size != 1 {
		t.Fatalf("expected only the recent key to survive, got %d keys", size)
	}
}

func TestOTPBudgetSweepUntilStops(t *testing.T) {
	t.Parallel()

	budget := newOTPBudget(1, 1, time.Millisecond)
	budget.addFailure("10.0.0.1", scopeCodeSend, "a@x.com")

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		budget.sweepUntil(stop, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for budget.perClient.size() != 0 || budget.perEmail.size() != 0 {
		select {
		case <-deadline:
			t.Fatal("expected the sweeper to empty both limiters")
		case <-time.After(time.Millisecond):
		}
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the sweeper to stop")
	}
}
