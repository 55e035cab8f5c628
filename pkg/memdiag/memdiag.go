// Package memdiag reports heap usage while a mining run progresses.
//
// Enable with --debug or APRIORI_MEM_DEBUG=1.
package memdiag

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hafizh1187/apriory/pkg/humanfmt"
	"github.com/Hafizh1187/apriory/pkg/membudget"
	"github.com/rs/zerolog"
)

// EnvVar enables memory diagnostics when set to "1".
const EnvVar = "APRIORI_MEM_DEBUG"

// Config holds configuration for memory diagnostics.
type Config struct {
	// Enabled controls whether memory diagnostics are active.
	Enabled bool

	// LogInterval is the interval for periodic memory logging.
	// 0 disables periodic logging.
	LogInterval time.Duration
}

// DefaultConfig returns the default configuration, reading from environment.
func DefaultConfig() Config {
	return Config{
		Enabled:     os.Getenv(EnvVar) == "1",
		LogInterval: 5 * time.Second,
	}
}

// Stats holds memory statistics from runtime.
type Stats struct {
	HeapAlloc uint64
	HeapInuse uint64
	Sys       uint64
	NumGC     uint32
}

// Read reads current memory statistics.
func Read() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc: m.HeapAlloc,
		HeapInuse: m.HeapInuse,
		Sys:       m.Sys,
		NumGC:     m.NumGC,
	}
}

// Tracker tracks heap usage over time with periodic logging.
type Tracker struct {
	config   Config
	log      zerolog.Logger
	budget   *membudget.Budget
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	mu       sync.Mutex
	phase    string
	peakHeap uint64
}

// NewTracker creates a tracker that logs to log. budget may be nil.
func NewTracker(config Config, log zerolog.Logger, budget *membudget.Budget) *Tracker {
	return &Tracker{
		config: config,
		log:    log,
		budget: budget,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		phase:  "init",
	}
}

// Start begins periodic logging if enabled.
func (t *Tracker) Start() {
	if !t.config.Enabled || t.config.LogInterval <= 0 {
		return
	}
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	go t.logLoop()
}

// Stop stops periodic logging and logs a final sample.
func (t *Tracker) Stop() {
	if !t.started.Load() {
		t.LogNow("shutdown")
		return
	}
	close(t.stopCh)
	<-t.doneCh
}

// SetPhase sets the current phase and logs a sample.
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	t.phase = phase
	t.mu.Unlock()
	t.LogNow("phase_change")
}

// LogNow logs current memory stats, with budget usage when a budget is set.
func (t *Tracker) LogNow(reason string) {
	if !t.config.Enabled {
		return
	}
	stats := t.sample()

	t.mu.Lock()
	phase := t.phase
	peak := t.peakHeap
	t.mu.Unlock()

	ev := t.log.Debug().
		Str("reason", reason).
		Str("mem_phase", phase).
		Str("heap_alloc", humanfmt.BytesUint64(stats.HeapAlloc)).
		Str("heap_inuse", humanfmt.BytesUint64(stats.HeapInuse)).
		Str("sys_total", humanfmt.BytesUint64(stats.Sys)).
		Str("peak_heap", humanfmt.BytesUint64(peak)).
		Uint32("num_gc", stats.NumGC)
	if t.budget != nil {
		ev = ev.
			Str("budget_inuse", humanfmt.BytesUint64(t.budget.InUse())).
			Str("budget_total", humanfmt.BytesUint64(t.budget.Total()))
	}
	ev.Msg("memory stats")
}

// PeakHeap returns the peak heap allocation sampled.
func (t *Tracker) PeakHeap() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peakHeap
}

func (t *Tracker) sample() Stats {
	stats := Read()
	t.mu.Lock()
	t.peakHeap = max(t.peakHeap, stats.HeapAlloc)
	t.mu.Unlock()
	return stats
}

func (t *Tracker) logLoop() {
	defer close(t.doneCh)

	ticker := time.NewTicker(t.config.LogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			t.LogNow("shutdown")
			return
		case <-ticker.C:
			t.LogNow("periodic")
		}
	}
}
