package economy

import (
	"sync"
	"time"
)

// Purifications happen at 23:00 local time on calendar days whose day-of-month
// is divisible by 3. The cycle length is therefore usually three days, but can
// stretch at month ends (e.g. the 30th to the 3rd).

const purifyHour = 23

// NextEventAt returns the next purification instant strictly after now.
func NextEventAt(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), purifyHour, 0, 0, 0, now.Location())
	if target.Day()%3 == 0 && target.After(now) {
		return target
	}
	// Bounded walk forward; 35 days always crosses a month boundary.
	for i := 0; i < 35; i++ {
		next := target.AddDate(0, 0, 1)
		target = time.Date(next.Year(), next.Month(), next.Day(), purifyHour, 0, 0, 0, next.Location())
		if target.Day()%3 == 0 {
			return target
		}
	}
	return target
}

// PreviousEventAt walks back from a purification instant to the one before it,
// which defines the start of the running cycle.
func PreviousEventAt(next time.Time) time.Time {
	prev := next
	for i := 0; i < 10; i++ {
		back := prev.AddDate(0, 0, -1)
		prev = time.Date(back.Year(), back.Month(), back.Day(), purifyHour, 0, 0, 0, back.Location())
		if prev.Day()%3 == 0 {
			break
		}
	}
	return prev
}

// Progress describes where the current moment sits inside the running
// purification cycle.
type Progress struct {
	Percent         float64
	Remaining       time.Duration
	NextEventAt     time.Time
	PreviousEventAt time.Time
}

// ProgressAt computes cycle progress for a given moment. Landing exactly on a
// purification instant reports 100% with zero remaining, which is the trigger
// condition the engine consumes.
func ProgressAt(now time.Time) Progress {
	if atEvent(now) {
		return Progress{
			Percent:         100,
			Remaining:       0,
			NextEventAt:     now,
			PreviousEventAt: PreviousEventAt(now),
		}
	}
	next := NextEventAt(now)
	prev := PreviousEventAt(next)
	total := next.Sub(prev)
	elapsed := now.Sub(prev)
	percent := float64(elapsed) / float64(total) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	remaining := next.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Progress{
		Percent:         percent,
		Remaining:       remaining,
		NextEventAt:     next,
		PreviousEventAt: prev,
	}
}

func atEvent(now time.Time) bool {
	return now.Day()%3 == 0 &&
		now.Hour() == purifyHour &&
		now.Minute() == 0 && now.Second() == 0 && now.Nanosecond() == 0
}

// OffsetClock is a wall clock with a settable offset, used to time-travel the
// purification cycle during testing and demos. The pure functions above take
// explicit times; only the engine and the debug endpoint go through this.
type OffsetClock struct {
	mu     sync.RWMutex
	offset time.Duration
}

func (c *OffsetClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(c.offset)
}

func (c *OffsetClock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

func (c *OffsetClock) SetOffset(offset time.Duration) {
	c.mu.Lock()
	c.offset = offset
	c.mu.Unlock()
}
