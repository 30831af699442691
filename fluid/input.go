package fluid

// MouseEvent is a mouse position in surface pixels.
type MouseEvent struct {
	X, Y float64
}

// Touch is one contact point. Coordinates are in client space; see ClientOrigin.
type Touch struct {
	ID               int64
	ClientX, ClientY float64
}

// TouchEvent lists the contacts still on the surface after the event.
type TouchEvent struct {
	Touches []Touch
}

// OnMouseDown presses the mouse pointer.
func (e *Engine) OnMouseDown(MouseEvent) {
	p := e.pointers.Primary()
	p.Down = true
	p.Recolor(e.now(), e.cfg.Colors, e.cfg.ColorCycleSpeed)
}

// OnMouseMove moves the mouse pointer. The pointer splats on the next Update
// when it moved faster than the movement threshold, pressed or not.
func (e *Engine) OnMouseMove(ev MouseEvent) {
	p := e.pointers.Primary()
	p.MoveTo(ev.X, ev.Y, e.movementThreshold)
	p.Recolor(e.now(), e.cfg.Colors, e.cfg.ColorCycleSpeed)
}

// OnMouseUp releases the mouse pointer.
func (e *Engine) OnMouseUp(MouseEvent) {
	e.pointers.Primary().Down = false
}

// OnTouchStart presses a pointer per contact, allocating slots for unseen
// identifiers. It returns true: the host must suppress default scrolling.
func (e *Engine) OnTouchStart(ev TouchEvent) bool {
	now := e.now()
	for _, t := range ev.Touches {
		p, _ := e.pointers.StartTouch(t.ID)
		p.Down = true
		p.Place(e.toSurface(t))
		p.Recolor(now, e.cfg.Colors, e.cfg.ColorCycleSpeed)
	}
	return true
}

// OnTouchMove moves the pointers of known contacts; unknown identifiers are
// ignored. It returns true: the host must suppress default scrolling.
func (e *Engine) OnTouchMove(ev TouchEvent) bool {
	now := e.now()
	for _, t := range ev.Touches {
		p, ok := e.pointers.Touch(t.ID)
		if !ok {
			continue
		}
		x, y := e.toSurface(t)
		p.MoveTo(x, y, e.movementThreshold)
		p.Recolor(now, e.cfg.Colors, e.cfg.ColorCycleSpeed)
	}
	return true
}

// OnTouchEnd releases every touch pointer whose contact is no longer listed.
// Slots are kept. It returns true: the host must suppress default scrolling.
func (e *Engine) OnTouchEnd(ev TouchEvent) bool {
	ids := make([]int64, len(ev.Touches))
	for i, t := range ev.Touches {
		ids[i] = t.ID
	}
	e.pointers.EndTouches(ids)
	return true
}

func (e *Engine) toSurface(t Touch) (float64, float64) {
	if o, ok := e.surface.(ClientOrigin); ok {
		ox, oy := o.ClientOrigin()
		return t.ClientX - ox, t.ClientY - oy
	}
	return t.ClientX, t.ClientY
}
