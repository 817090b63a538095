package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultAttemptLimit     = 8
	defaultAttemptWindow    = 15 * time.Minute
	defaultEmailLimitFactor = 3
)

// attemptLimiter counts failed one-time-code attempts per key inside a
// sliding window.
type attemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}
	if window <= 0 {
		window = defaultAttemptWindow
	}
	return &attemptLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (limiter *attemptLimiter) blocked(key string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return len(limiter.pruneLocked(key)) >= limiter.limit
}

func (limiter *attemptLimiter) addFailure(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.attempts[key] = append(limiter.pruneLocked(key), limiter.now())
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.attempts, key)
}

func (limiter *attemptLimiter) pruneLocked(key string) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return nil
	}

	threshold := limiter.now().Add(-limiter.window)
	pruned := values[:0]
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return nil
	}
	limiter.attempts[key] = pruned
	return pruned
}

// sweep drops every key whose attempts have all left the window.
func (limiter *attemptLimiter) sweep() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for key := range limiter.attempts {
		limiter.pruneLocked(key)
	}
}

func (limiter *attemptLimiter) size() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.attempts)
}

// otpBudget limits one-time-code traffic twice: per client address and email,
// and per email across all addresses.
type otpBudget struct {
	perClient *attemptLimiter
	perEmail  *attemptLimiter
}

func newOTPBudget(limit int, emailLimit int, window time.Duration) *otpBudget {
	perClient := newAttemptLimiter(limit, window)
	if emailLimit <= 0 {
		emailLimit = perClient.limit * defaultEmailLimitFactor
	}
	return &otpBudget{
		perClient: perClient,
		perEmail:  newAttemptLimiter(emailLimit, window),
	}
}

func (budget *otpBudget) blocked(ip string, scope string, email string) bool {
	return budget.perClient.blocked(clientAttemptKey(ip, scope, email)) ||
		budget.perEmail.blocked(emailAttemptKey(scope, email))
}

func (budget *otpBudget) addFailure(ip string, scope string, email string) {
	budget.perClient.addFailure(clientAttemptKey(ip, scope, email))
	budget.perEmail.addFailure(emailAttemptKey(scope, email))
}

// reset clears only the caller's own bucket. Failures other addresses spent on
// the email keep counting.
func (budget *otpBudget) reset(ip string, scope string, email string) {
	budget.perClient.reset(clientAttemptKey(ip, scope, email))
}

// sweepUntil prunes both limiters every interval until stop is closed.
func (budget *otpBudget) sweepUntil(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			budget.perClient.sweep()
			budget.perEmail.sweep()
		}
	}
}

func clientIP(c *fiber.Ctx) string {
	ip := strings.TrimSpace(c.IP())
	if ip == "" {
		return "unknown"
	}
	return ip
}

func clientAttemptKey(ip string, scope string, email string) string {
	return scope + "|" + ip + "|" + normalizeAttemptEmail(email)
}

func emailAttemptKey(scope string, email string) string {
	return scope + "|*|" + normalizeAttemptEmail(email)
}

func normalizeAttemptEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
