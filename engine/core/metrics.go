package core

import (
	"strings"
	"sync"
	"time"
)

type stageSample struct {
	Stage    string
	Duration time.Duration
}

// StageMetrics records how long each startup stage took, in completion order.
type StageMetrics struct {
	mu      sync.Mutex
	samples []stageSample
}

func NewStageMetrics() *StageMetrics {
	return &StageMetrics{}
}

// Measure runs fn under a clock and records its duration under stage, even
// when fn fails.
func (m *StageMetrics) Measure(stage string, fn func() error) error {
	clock := NewClock()
	clock.Start()
	err := fn()
	clock.Stop()
	m.Record(stage, clock.Elapsed())
	if err == nil {
		LogDebug("stage %s done in %s", stage, clock.Elapsed())
	}
	return err
}

func (m *StageMetrics) Record(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, stageSample{Stage: stage, Duration: d})
}

// Stages returns the recorded stage names in completion order.
func (m *StageMetrics) Stages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.samples))
	for i, s := range m.samples {
		names[i] = s.Stage
	}
	return names
}

func (m *StageMetrics) Total() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total time.Duration
	for _, s := range m.samples {
		total += s.Duration
	}
	return total
}

func (m *StageMetrics) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := make([]string, 0, len(m.samples))
	for _, s := range m.samples {
		parts = append(parts, s.Stage+"="+s.Duration.String())
	}
	return strings.Join(parts, " ")
}
