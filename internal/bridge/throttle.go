package bridge

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	warnEvery = 100 * time.Millisecond
	warnBurst = 10
)

// throttledLogger emits at most warnBurst warnings per burst and then one per
// warnEvery. Lines over the limit are logged at debug instead and counted;
// the count goes out with the next warning or the next flush.
type throttledLogger struct {
	logger  *slog.Logger
	limiter *rate.Limiter

	mu         sync.Mutex
	suppressed int
}

func newThrottledLogger(logger *slog.Logger) *throttledLogger {
	return &throttledLogger{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(warnEvery), warnBurst),
	}
}

func (l *throttledLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	if !l.limiter.Allow() {
		l.suppressed++
		l.mu.Unlock()
		l.logger.Debug(msg, append(args, "throttled", true)...)
		return
	}
	suppressed := l.suppressed
	l.suppressed = 0
	l.mu.Unlock()

	if suppressed > 0 {
		args = append(args, "suppressed", suppressed)
	}
	l.logger.Warn(msg, args...)
}

// flush reports a pending suppressed count. Unless force is set it waits
// for the limiter like any other warning.
func (l *throttledLogger) flush(force bool) {
	l.mu.Lock()
	if l.suppressed == 0 || (!force && !l.limiter.Allow()) {
		l.mu.Unlock()
		return
	}
	suppressed := l.suppressed
	l.suppressed = 0
	l.mu.Unlock()

	l.logger.Warn("Warnings throttled", "suppressed", suppressed)
}
