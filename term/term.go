// Package term draws the smoke simulation in a terminal with tcell and
// forwards terminal mouse and key events to the engine.
//
// Each cell shows two vertically stacked surface pixels with an upper half
// block: the foreground is the top pixel, the background the bottom one.
package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu"
)

const halfBlock = '▀'

// Screen adapts a tcell screen into a fluid.Surface. Scale is the number of
// surface pixels per half cell along each axis.
type Screen struct {
	screen tcell.Screen
	scale  int
	down   bool
}

// New wraps an initialized tcell screen.
func New(screen tcell.Screen, scale int) *Screen {
	return &Screen{screen: screen, scale: max(scale, 1)}
}

// Size returns the surface size in pixels.
func (s *Screen) Size() (int, int) {
	cols, rows := s.screen.Size()
	return cols * s.scale, rows * 2 * s.scale
}

// PixelAt returns the surface pixel at the center of a cell.
func (s *Screen) PixelAt(col, row int) (x, y float64) {
	return float64(col*s.scale) + float64(s.scale)/2, float64(row*2*s.scale) + float64(s.scale)
}

// Draw paints a composited frame. px must have the surface size; row 0 of px
// is the bottom of the surface.
func (s *Screen) Draw(px gpu.Pixels) {
	cols, rows := s.screen.Size()
	for row := range rows {
		for col := range cols {
			x := col*s.scale + s.scale/2
			top := s.sample(px, x, (2*row)*s.scale+s.scale/2)
			bottom := s.sample(px, x, (2*row+1)*s.scale+s.scale/2)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			s.screen.SetContent(col, row, halfBlock, nil, style)
		}
	}
	s.screen.Show()
}

// sample reads surface pixel (x, y), y counted from the top, composited over black.
func (s *Screen) sample(px gpu.Pixels, x, y int) tcell.Color {
	c := px.At(x, px.Height-1-y)
	if len(c) < 3 {
		return tcell.NewRGBColor(0, 0, 0)
	}
	return tcell.NewRGBColor(channel(c[0]), channel(c[1]), channel(c[2]))
}

func channel(v float32) int32 {
	return int32(max(0, min(1, v))*255 + 0.5)
}

// Keys handled by Handle.
const (
	KeyRandom   = 'r'
	KeyAdditive = 'a'
	KeyPalette  = 'p'
	KeyQuit     = 'q'
)

// Controls holds the settings key presses act on.
type Controls struct {
	RandomBurst int
	Palettes    []string // cycled by KeyPalette
	Lookup      map[string][]config.RGB

	palette int
}

// Handle forwards one event to the engine. It returns false when the user
// asked to quit.
func (s *Screen) Handle(e *fluid.Engine, ev tcell.Event, ctl *Controls) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case KeyQuit:
			return false
		case KeyRandom:
			e.AddRandomSplats(max(ctl.RandomBurst, 1))
		case KeyAdditive:
			e.SetConfig(config.Update{AdditiveMode: config.Ptr(!e.Config().AdditiveMode)})
		case KeyPalette:
			ctl.nextPalette(e)
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := s.PixelAt(col, row)
		pressed := ev.Buttons()&tcell.Button1 != 0
		switch {
		case pressed && !s.down:
			s.down = true
			e.OnMouseDown(fluid.MouseEvent{X: x, Y: y})
			e.OnMouseMove(fluid.MouseEvent{X: x, Y: y})
		case pressed:
			e.OnMouseMove(fluid.MouseEvent{X: x, Y: y})
		case s.down:
			s.down = false
			e.OnMouseUp(fluid.MouseEvent{X: x, Y: y})
		default:
			e.OnMouseMove(fluid.MouseEvent{X: x, Y: y})
		}

	case *tcell.EventResize:
		s.screen.Sync()
		if err := e.Resize(); err != nil {
			return false
		}
	}
	return true
}

func (c *Controls) nextPalette(e *fluid.Engine) {
	if len(c.Palettes) == 0 {
		return
	}
	c.palette = (c.palette + 1) % len(c.Palettes)
	colors, ok := c.Lookup[c.Palettes[c.palette]]
	if !ok {
		return
	}
	colors = append([]config.RGB(nil), colors...)
	e.SetConfig(config.Update{Colors: &colors})
}
