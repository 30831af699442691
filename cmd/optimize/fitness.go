package main

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu/software"
	"github.com/pthm-cable/smoke/telemetry"
)

// RunSpec is the shape of one evaluation run.
type RunSpec struct {
	Width, Height int     // surface size
	Frames        int     // frames per run
	Window        int     // frames per stats window
	BurstEvery    int     // frames between random bursts
	Burst         int     // splats per burst
	Target        float64 // desired mean coverage
}

// DefaultRunSpec returns a small, quick run.
func DefaultRunSpec() RunSpec {
	return RunSpec{Width: 48, Height: 32, Frames: 600, Window: 30, BurstEvery: 60, Burst: 3, Target: 0.3}
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	run        RunSpec
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastCover   float64 // mean coverage from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, run RunSpec, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		run:        run,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score and mean coverage from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() (quality, coverage float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality, fe.lastCover
}

type seedResult struct {
	quality  float64
	coverage float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated quality averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	update := fe.params.Update(x)

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(update, s)
			if err != nil {
				slog.Error("run failed", "seed", s, "error", err)
				return
			}
			results[idx] = seedResult{
				quality:  computeQuality(windows, fe.run.Target),
				coverage: meanCoverage(windows),
			}
		}(i, seed)
	}
	wg.Wait()

	var quality, coverage float64
	for _, r := range results {
		quality += r.quality
		coverage += r.coverage
	}
	n := float64(len(results))

	fe.mu.Lock()
	fe.lastQuality = quality / n
	fe.lastCover = coverage / n
	fe.mu.Unlock()

	return -quality / n
}

// fixedSurface is a headless surface of constant size.
type fixedSurface struct{ w, h int }

func (s fixedSurface) Size() (int, int) { return s.w, s.h }

// runSimulation solves one seeded run on the software device and returns the
// stats of every window.
func (fe *FitnessEvaluator) runSimulation(update config.Update, seed int64) ([]telemetry.WindowStats, error) {
	base := config.Full(fe.baseConfig.Fluid.Merge(update))
	collector := telemetry.NewCollector(fe.run.Window)

	var frame int64
	start := time.Unix(0, 0)
	clock := func() time.Time {
		return start.Add(time.Duration(frame) * time.Second / 60)
	}

	engine, err := fluid.New(software.New(), fixedSurface{fe.run.Width, fe.run.Height}, fluid.Options{
		Config: &base,
		Now:    clock,
		Rand:   rand.New(rand.NewSource(seed)),
		Events: collector,
	})
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	var windows []telemetry.WindowStats
	for frame < int64(fe.run.Frames) {
		if fe.run.BurstEvery > 0 && frame%int64(fe.run.BurstEvery) == 0 {
			engine.AddRandomSplats(fe.run.Burst)
		}
		engine.Update()
		frame++

		if collector.ShouldFlush(frame) {
			px, err := engine.ReadDensity()
			if err != nil {
				return nil, err
			}
			windows = append(windows, collector.Flush(frame, float64(frame)/60, fluid.Intensities(px)))
		}
	}
	return windows, nil
}

// Quality component weights.
const (
	qualityWeightCoverage  = 0.5
	qualityWeightStability = 0.3
	qualityWeightHeadroom  = 0.2

	qualityWarmupWindows = 2   // skip first N windows (warmup)
	coverageTolerance    = 0.15
	saturationLevel      = 1.0 // dye intensity where the display clips
)

// computeQuality scores a run in [0, 1]: mean coverage near target, steady
// coverage across windows and little dye above the clipping level.
func computeQuality(windows []telemetry.WindowStats, target float64) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	coverage := make([]float64, len(valid))
	var headroom float64
	for i, w := range valid {
		coverage[i] = w.Coverage
		headroom += math.Exp(-math.Max(0, w.DensityP90-saturationLevel))
	}
	headroom /= float64(len(valid))

	mean, std := stat.PopMeanStdDev(coverage, nil)
	e := (mean - target) / coverageTolerance
	coverageScore := math.Exp(-e * e)

	stabilityScore := 0.0
	if mean > 0 {
		cv := std / mean
		stabilityScore = math.Exp(-cv * cv)
	}

	return clamp01(qualityWeightCoverage*coverageScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHeadroom*headroom)
}

func meanCoverage(windows []telemetry.WindowStats) float64 {
	if len(windows) == 0 {
		return 0
	}
	var sum float64
	for _, w := range windows {
		sum += w.Coverage
	}
	return sum / float64(len(windows))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return max(0, min(1, x))
}
