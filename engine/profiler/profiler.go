package profiler

import (
	"io"
	"log"
	"runtime"
	"time"
)

// Stats is one reporting window of pose update measurements.
type Stats struct {
	Updates     int
	Rate        float64
	AvgUpdate   time.Duration
	MaxUpdate   time.Duration
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	MaxPauseUs  uint64
}

// Profiler measures how long skeleton pose updates take and how much they allocate.
// It reports to its logger once per interval.
type Profiler struct {
	logger         *log.Logger
	now            func() time.Time
	updateInterval time.Duration

	windowStart    time.Time
	updateStart    time.Time
	updates        int
	busy           time.Duration
	maxUpdate      time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler with the provided options applied.
// The interval defaults to 1 second and output is discarded unless WithLogger is given.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         log.New(io.Discard, "", 0),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.windowStart = p.now()
	return p
}

// Begin marks the start of one pose update.
func (p *Profiler) Begin() {
	p.updateStart = p.now()
}

// End marks the end of the update started by Begin.
// Logs the window statistics when the interval has elapsed.
//
// Returns:
//   - bool: true if a window was reported by this call
func (p *Profiler) End() bool {
	t := p.now()
	d := t.Sub(p.updateStart)
	p.updates++
	p.busy += d
	if d > p.maxUpdate {
		p.maxUpdate = d
	}

	elapsed := t.Sub(p.windowStart)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		Updates:     p.updates,
		Rate:        float64(p.updates) / elapsed.Seconds(),
		AvgUpdate:   p.busy / time.Duration(p.updates),
		MaxUpdate:   p.maxUpdate,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}
	// PauseNs is a circular buffer of the last 256 pauses
	start := p.lastGCCount
	if s.GCCount-start > 256 {
		start = s.GCCount - 256
	}
	for i := start; i < s.GCCount; i++ {
		s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.logger.Printf("[Profiler] updates: %d (%.1f/s) | avg: %s | max: %s | heap: %.2f MB | alloc rate: %.2f MB/s | GC: %d (max pause: %d µs)",
		s.Updates, s.Rate, s.AvgUpdate, s.MaxUpdate, s.HeapMB, s.AllocRateMB, s.GCCount, s.MaxPauseUs)

	p.last = s
	p.windowStart = t
	p.updates = 0
	p.busy = 0
	p.maxUpdate = 0
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently reported window.
func (p *Profiler) Last() Stats { return p.last }
