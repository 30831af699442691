package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
)

// Action is what the user asked for in one frame of the controls panel.
type Action struct {
	Updates []config.Update // one per changed control, in display order
	Palette string          // selected palette preset, empty for none
	Random  bool            // random splat burst requested
}

// Empty reports whether the panel produced nothing this frame.
func (a Action) Empty() bool {
	return len(a.Updates) == 0 && a.Palette == "" && !a.Random
}

// ControlsPanel renders the left-side panel with the fluid parameters.
type ControlsPanel struct {
	renderer *Renderer
	params   []Param
	palettes []string
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden controls panel. palettes lists the preset
// names offered as buttons.
func NewControlsPanel(x, y, width int32, palettes []string) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		params:   Params(),
		palettes: palettes,
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies on the visible panel, so the
// host can keep clicks on controls away from the fluid.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, c.bounds())
}

func (c *ControlsPanel) bounds() rl.Rectangle {
	t := c.renderer.Theme
	rows := int32(len(c.params))*(t.LineHeight+4) + t.LineHeight*4 + 30*(1+int32(len(c.palettes)+1)/2)
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(rows + t.Padding*3)}
}

// Draw renders the panel for the current parameters and returns the
// requested changes.
func (c *ControlsPanel) Draw(cur config.Fluid) Action {
	var act Action
	if !c.visible {
		return act
	}

	r := c.renderer
	pad := r.Theme.Padding
	b := c.bounds()
	r.DrawPanel(c.x, c.y, c.width, int32(b.Height))

	x, y := c.x+pad, c.y+pad
	inner := c.width - pad*2

	y = r.DrawSectionHeader(x, y, "Fluid")
	for _, p := range c.params {
		old := p.Get(cur)
		var v float64
		v, y = r.Slider(x, y, inner, p, old)
		if float32(v) != float32(old) {
			act.Updates = append(act.Updates, p.Set(v))
		}
	}

	additive := "Additive: off"
	if cur.AdditiveMode {
		additive = "Additive: on"
	}
	half := float32(inner-8) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 24}, additive) {
		act.Updates = append(act.Updates, config.Update{AdditiveMode: config.Ptr(!cur.AdditiveMode)})
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 8, Y: float32(y), Width: half, Height: 24}, "Random") {
		act.Random = true
	}
	y += 30

	y = r.DrawSectionHeader(x, y, "Palette")
	y = r.DrawSwatches(x, y, cur.Colors)
	for i, name := range c.palettes {
		bx := float32(x)
		if i%2 == 1 {
			bx += half + 8
		}
		if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: half, Height: 24}, name) {
			act.Palette = name
		}
		if i%2 == 1 || i == len(c.palettes)-1 {
			y += 30
		}
	}

	return act
}
