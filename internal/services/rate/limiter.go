package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type window struct {
	name  string
	span  time.Duration
	limit int
}

// Limiter caps like throughput per user: a short burst window plus a
// sustained per-minute window. A zero limit disables that window.
type Limiter struct {
	store   WindowStore
	windows []window
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	l := &Limiter{store: store}
	if per10Sec > 0 {
		l.windows = append(l.windows, window{name: "10s", span: 10 * time.Second, limit: per10Sec})
	}
	if perMinute > 0 {
		l.windows = append(l.windows, window{name: "min", span: time.Minute, limit: perMinute})
	}
	return l
}

// AllowLike returns whether the user may like now and, if not, how many
// seconds to wait. Every window is bumped even when an earlier one
// blocks, so a blocked burst still counts against the minute budget.
func (l *Limiter) AllowLike(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows {
		key := "rate:likes:" + w.name + ":" + strconv.FormatInt(userID, 10)
		count, ttl, err := l.store.IncrementWindow(ctx, key, w.span)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			if sec := ceilSeconds(ttl); sec > retryAfterSec {
				retryAfterSec = sec
			}
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec == 0 {
		sec = 1
	}
	return sec
}
