package capture

import "time"

// FPSMeter counts frames and refreshes its rate once per window.
type FPSMeter struct {
	window time.Duration
	count  int
	last   time.Time
	fps    float64
}

// NewFPSMeter creates a meter that recomputes the rate every window.
func NewFPSMeter(window time.Duration, now time.Time) *FPSMeter {
	if window <= 0 {
		window = time.Second
	}
	return &FPSMeter{window: window, last: now}
}

// Tick counts one frame at now and returns the current rate.
func (m *FPSMeter) Tick(now time.Time) float64 {
	m.count++
	elapsed := now.Sub(m.last)
	if elapsed >= m.window {
		m.fps = float64(m.count) / elapsed.Seconds()
		m.count = 0
		m.last = now
	}
	return m.fps
}

// FPS returns the rate of the last completed window.
func (m *FPSMeter) FPS() float64 {
	return m.fps
}
