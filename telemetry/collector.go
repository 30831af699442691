// Package telemetry provides frame timing, solver activity windows and
// bookmarks for the smoke simulation, with CSV output.
package telemetry

// Collector accumulates solver events within frame windows and produces WindowStats.
// It satisfies fluid.EventRecorder.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStart int64

	// Event counters for current window
	batches       int
	splats        int
	droppedSplats int
	pointerSplats int
}

// NewCollector creates a collector that flushes every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// RecordBatch records a queued batch reaching the solver.
func (c *Collector) RecordBatch(size int) {
	c.batches++
}

// RecordSplat records an injected splat.
func (c *Collector) RecordSplat() {
	c.splats++
}

// RecordDroppedSplat records a splat rejected as invalid.
func (c *Collector) RecordDroppedSplat() {
	c.droppedSplats++
}

// RecordPointerSplat records a splat produced by a moving pointer.
func (c *Collector) RecordPointerSplat() {
	c.pointerSplats++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return frame-c.windowStart >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// intensities holds the dye intensity of every texel at the end of the window.
func (c *Collector) Flush(frame int64, simTimeSec float64, intensities []float64) WindowStats {
	field := ComputeFieldStats(intensities)

	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   frame,
		SimTimeSec:  simTimeSec,

		Batches:       c.batches,
		Splats:        c.splats,
		DroppedSplats: c.droppedSplats,
		PointerSplats: c.pointerSplats,

		DensityMean:  field.Mean,
		DensityStd:   field.Std,
		DensityP50:   field.P50,
		DensityP90:   field.P90,
		DensityMax:   field.Max,
		DensityTotal: field.Total,
		Coverage:     field.Coverage,
	}

	c.windowStart = frame
	c.batches = 0
	c.splats = 0
	c.droppedSplats = 0
	c.pointerSplats = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
