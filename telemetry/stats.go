package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CoverageThreshold is the dye intensity above which a texel counts as smoke.
const CoverageThreshold = 0.01

// WindowStats holds aggregated statistics for a frame window.
type WindowStats struct {
	WindowStart int64   `csv:"-"`
	WindowEnd   int64   `csv:"window_end"`
	SimTimeSec  float64 `csv:"sim_time"`

	// Solver activity during window
	Batches       int `csv:"batches"`
	Splats        int `csv:"splats"`
	DroppedSplats int `csv:"dropped_splats"`
	PointerSplats int `csv:"pointer_splats"`

	// Dye distribution (sampled at window end)
	DensityMean  float64 `csv:"density_mean"`
	DensityStd   float64 `csv:"density_std"`
	DensityP50   float64 `csv:"density_p50"`
	DensityP90   float64 `csv:"density_p90"`
	DensityMax   float64 `csv:"density_max"`
	DensityTotal float64 `csv:"density_total"`
	Coverage     float64 `csv:"coverage"` // fraction of texels above CoverageThreshold
}

// FieldStats summarizes a set of texel intensities.
type FieldStats struct {
	Mean, Std     float64
	P50, P90, Max float64
	Total         float64
	Coverage      float64
}

// ComputeFieldStats calculates the distribution of texel intensities.
// An empty slice yields zeros.
func ComputeFieldStats(values []float64) FieldStats {
	if len(values) == 0 {
		return FieldStats{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	var covered int
	for _, v := range sorted {
		if v > CoverageThreshold {
			covered++
		}
	}

	return FieldStats{
		Mean:     mean,
		Std:      std,
		P50:      stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:      stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:      sorted[len(sorted)-1],
		Total:    floats.Sum(sorted),
		Coverage: float64(covered) / float64(len(sorted)),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStart),
		slog.Int64("window_end", s.WindowEnd),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("batches", s.Batches),
		slog.Int("splats", s.Splats),
		slog.Int("dropped_splats", s.DroppedSplats),
		slog.Int("pointer_splats", s.PointerSplats),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("density_total", s.DensityTotal),
		slog.Float64("coverage", s.Coverage),
	)
}

// LogStats logs the window stats.
func (s WindowStats) LogStats(log *slog.Logger) {
	log.Info("stats",
		"window_end", s.WindowEnd,
		"sim_time", s.SimTimeSec,
		"batches", s.Batches,
		"splats", s.Splats,
		"dropped_splats", s.DroppedSplats,
		"pointer_splats", s.PointerSplats,
		"density_mean", s.DensityMean,
		"density_max", s.DensityMax,
		"coverage", s.Coverage,
	)
}
