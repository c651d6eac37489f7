package gas

import "time"

// Timer is a wall-clock side channel recorded alongside gas charges purely
// for calibration; it is never consulted for consensus-relevant decisions.
// Mirrors the teacher's evm.Call start := time.Now() / tracer.CaptureEnd
// timing, which is similarly advisory-only.
type Timer struct {
	started time.Time
	samples []Sample
}

// Sample pairs a charge name with the wall-clock duration it took to
// compute (not to charge — charging is O(1); this is for timing the
// host-side work the charge corresponds to).
type Sample struct {
	Name     string
	Duration time.Duration
}

func NewTimer() *Timer {
	return &Timer{}
}

// Record times f and appends a sample labeled name. f's return value is
// passed through unchanged.
func (t *Timer) Record(name string, f func() error) error {
	start := time.Now()
	err := f()
	t.samples = append(t.samples, Sample{Name: name, Duration: time.Since(start)})
	return err
}

func (t *Timer) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}
