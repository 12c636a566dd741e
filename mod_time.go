package starride

import (
	"time"
)

// Time is the frame clock. Dt is the delta handed to the current frame;
// Time advances by Dt, so a host-driven app replays deterministically.
type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

// Seconds returns Dt in seconds, the unit the per-frame easing rates use.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

func (t *Time) advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	t.Dt = dt
	t.Time = t.Time.Add(dt)
	t.Frame++
}

type TimeModule struct {
	Start time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	start := mod.Start
	if start.IsZero() {
		start = time.Now()
	}
	cmd.AddResources(&Time{Time: start})
}
