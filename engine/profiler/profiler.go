// Package profiler reports frame rate, memory and dropped frames through the logger.
package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Stats is one reporting window.
type Stats struct {
	FPS          float64
	HeapMB       float64
	AllocRateMB  float64
	SysMB        float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	Dropped      int
	TotalDropped int
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         *zap.Logger
	now            func() time.Time
	frameCount     int
	dropped        int
	totalDropped   int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler reporting to logger every interval.
// A non-positive interval defaults to 1 second.
//
// Parameters:
//   - logger: destination of the periodic report
//   - interval: reporting interval
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger, interval time.Duration) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	p := &Profiler{
		logger:         logger,
		now:            time.Now,
		updateInterval: interval,
	}
	p.lastTime = p.now()
	return p
}

// FrameDropped counts a frame that was skipped because the surface could not be acquired.
func (p *Profiler) FrameDropped() {
	p.dropped++
	p.totalDropped++
}

// TotalDropped returns every dropped frame since creation.
func (p *Profiler) TotalDropped() int {
	return p.totalDropped
}

// Last returns the most recently reported window.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:      p.memStats.NumGC,
		Dropped:      p.dropped,
		TotalDropped: p.totalDropped,
	}

	// PauseNs is a circular buffer of the last 256 pauses.
	if s.GCCount > 0 {
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		start := p.lastGCCount
		if s.GCCount-start > 256 {
			start = s.GCCount - 256
		}
		for i := start; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profile",
		zap.Float64("fps", s.FPS),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_us", s.LastPauseUs),
		zap.Uint64("gc_max_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB),
		zap.Int("dropped", s.Dropped),
	)

	p.last = s
	p.frameCount = 0
	p.dropped = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
