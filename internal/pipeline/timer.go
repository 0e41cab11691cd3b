package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// startTimer returns a func that observes elapsed time into o when called,
// a small wrapper so stage handlers can `defer stop()` uniformly.
func startTimer(o prometheus.Observer) func() {
	start := time.Now()
	return func() {
		o.Observe(time.Since(start).Seconds())
	}
}
