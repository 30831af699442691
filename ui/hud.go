package ui

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	FPS            int32
	FieldW, FieldH int
	Format         string   // negotiated texture format
	Notes          []string // capability fallbacks
	Pending        int      // queued splat batches
	Stats          telemetry.WindowStats
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top right corner.
func (h *HUD) Draw(data HUDData, screenWidth int32) {
	r := h.renderer
	x := screenWidth - 260
	y := int32(10)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 26
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Field", fmt.Sprintf("%dx%d", data.FieldW, data.FieldH))
	y = r.DrawLabelValue(x, y, "Format", data.Format)
	y = r.DrawLabelValue(x, y, "Pending", fmt.Sprintf("%d", data.Pending))
	y = r.DrawLabelValue(x, y, "Splats", fmt.Sprintf("%d (+%d pointer)", data.Stats.Splats, data.Stats.PointerSplats))
	y = r.DrawBar(x, y, "Coverage", float32(data.Stats.Coverage), 250)
	for _, n := range data.Notes {
		rl.DrawText(n, x, y, r.Theme.FontSize, r.Theme.WarnColor)
		y += r.Theme.LineHeight
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the solver phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the slowest phases first.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Solver Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Update: %s (max %s)",
		stats.AvgTickDuration.Round(time.Microsecond),
		stats.MaxTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(stats.PhaseAvg[b], stats.PhaseAvg[a])
	})

	for _, name := range names {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-12s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}
