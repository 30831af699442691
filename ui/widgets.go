package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a progress bar for [0, 1] values.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32) int32 {
	value = max(0, min(1, value))

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, r.Theme.BarFill)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawSwatches draws one square per palette color. Emissive channels are
// normalized by the brightest channel of each color.
func (r *Renderer) DrawSwatches(x, y int32, colors []config.RGB) int32 {
	const size = 12
	for i, c := range colors {
		peak := math.Max(c[0], math.Max(c[1], c[2]))
		if peak <= 0 {
			peak = 1
		}
		col := rl.Color{
			R: uint8(255 * max(0, c[0]) / peak),
			G: uint8(255 * max(0, c[1]) / peak),
			B: uint8(255 * max(0, c[2]) / peak),
			A: 255,
		}
		rl.DrawRectangle(x+int32(i)*(size+4), y+1, size, size, col)
	}
	return y + r.Theme.LineHeight
}

// Slider draws a labeled raygui slider for p and returns the slider value.
func (r *Renderer) Slider(x, y, width int32, p Param, value float64) (float64, int32) {
	rl.DrawText(p.Label, x, y, r.Theme.FontSize, r.Theme.LabelColor)

	bounds := rl.Rectangle{
		X:      float32(x + r.Theme.LabelWidth),
		Y:      float32(y),
		Width:  float32(width - r.Theme.LabelWidth - 56),
		Height: float32(r.Theme.SliderHeight),
	}
	v := float64(gui.SliderBar(bounds, "", "", float32(value), p.Range.Min, p.Range.Max))
	if p.Integer {
		v = math.Round(v)
	}
	rl.DrawText(fmt.Sprintf(p.Format, v), int32(bounds.X+bounds.Width)+6, y, r.Theme.FontSize, r.Theme.ValueColor)
	return v, y + r.Theme.LineHeight + 4
}
