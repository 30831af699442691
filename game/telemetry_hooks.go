package game

import "github.com/pthm-cable/smoke/fluid"

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.frame) {
		return
	}

	var intensities []float64
	if px, err := g.engine.ReadDensity(); err != nil {
		g.log.Error("failed to read density", "error", err)
	} else {
		intensities = fluid.Intensities(px)
	}

	stats := g.collector.Flush(g.frame, g.simTime, intensities)
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	stats.LogStats(g.log)
	perfStats.LogStats(g.log)

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		g.log.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEnd); err != nil {
		g.log.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		bm.LogBookmark(g.log)
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			g.log.Error("failed to write bookmark", "error", err)
		}
	}
}
