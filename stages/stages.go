// Package stages fabricates a multi-stage progress animation for uploads.
// The server reports no incremental progress, so the client interpolates a
// plausible percentage from elapsed time while the real request is in flight.
// The animation is cosmetic only and never gates correctness.
package stages

import (
	"sync"
	"time"

	"noteflow/content"
)

// TickInterval is how often a running Simulator emits an update.
const TickInterval = 200 * time.Millisecond

// Stage is one segment of the synthetic progress curve. Percent advances
// linearly from Start to End over Duration. The final stage of a table holds
// at End indefinitely; only the real response drives progress to 100.
type Stage struct {
	Start    float64
	End      float64
	Label    string
	Duration time.Duration
}

var (
	audioStages = []Stage{
		{0, 25, "Uploading audio...", 3 * time.Second},
		{25, 65, "Transcribing speech...", 10 * time.Second},
		{65, 95, "Summarizing...", 8 * time.Second},
	}
	videoStages = []Stage{
		{0, 20, "Uploading video...", 5 * time.Second},
		{20, 40, "Extracting audio...", 6 * time.Second},
		{40, 75, "Transcribing speech...", 12 * time.Second},
		{75, 95, "Summarizing...", 8 * time.Second},
	}
	bookStages = []Stage{
		{0, 30, "Uploading document...", 3 * time.Second},
		{30, 70, "Reading pages...", 9 * time.Second},
		{70, 95, "Summarizing...", 8 * time.Second},
	}
)

// Table returns the stage table for a content kind.
func Table(kind content.Kind) []Stage {
	switch kind {
	case content.KindVideo:
		return videoStages
	case content.KindBook:
		return bookStages
	default:
		return audioStages
	}
}

// At computes the synthetic percentage and stage label for the given elapsed
// time. It is a pure function of the table and the clock, so the animation
// is fully decoupled from the real request's lifecycle.
func At(table []Stage, elapsed time.Duration) (percent float64, label string) {
	if len(table) == 0 {
		return 0, ""
	}

	for _, s := range table {
		if elapsed < s.Duration {
			frac := float64(elapsed) / float64(s.Duration)
			return s.Start + (s.End-s.Start)*frac, s.Label
		}
		elapsed -= s.Duration
	}

	// Past the last stage: hold at its end percentage.
	last := table[len(table)-1]
	return last.End, last.Label
}

// Simulator drives a stage table on a repeating timer, delivering updates to
// a callback until stopped. One Simulator serves exactly one upload.
type Simulator struct {
	table  []Stage
	onTick func(percent float64, label string)

	stopOnce sync.Once
	done     chan struct{}
}

// Start begins emitting progress updates for the given kind every
// TickInterval. The callback runs on the simulator's own goroutine.
func Start(kind content.Kind, onTick func(percent float64, label string)) *Simulator {
	s := &Simulator{
		table:  Table(kind),
		onTick: onTick,
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Simulator) run() {
	started := time.Now()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			percent, label := At(s.table, time.Since(started))
			s.onTick(percent, label)
		}
	}
}

// Stop cancels the timer. It is safe to call more than once and after the
// real request has resolved; every path out of an upload stops its simulator.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}
