package pointer

// Table holds the primary (mouse) pointer and one slot per touch identifier.
//
// Touch slots are never removed: a lifted touch stays in the table, inactive,
// for the life of the table. Iteration follows insertion order.
type Table struct {
	primary *Pointer
	touches map[int64]*Pointer
	order   []int64
}

// NewTable returns a table holding only the primary pointer.
func NewTable() *Table {
	return &Table{
		primary: New(),
		touches: make(map[int64]*Pointer),
	}
}

// Primary returns the mouse pointer.
func (t *Table) Primary() *Pointer { return t.primary }

// Touch returns the slot for a touch identifier.
func (t *Table) Touch(id int64) (*Pointer, bool) {
	p, ok := t.touches[id]
	return p, ok
}

// StartTouch returns the slot for id, allocating it when id is unseen.
func (t *Table) StartTouch(id int64) (p *Pointer, created bool) {
	if p, ok := t.touches[id]; ok {
		return p, false
	}
	p = New()
	p.ID = id
	t.touches[id] = p
	t.order = append(t.order, id)
	return p, true
}

// EndTouches releases every touch slot whose identifier is not in remaining.
func (t *Table) EndTouches(remaining []int64) {
	still := make(map[int64]bool, len(remaining))
	for _, id := range remaining {
		still[id] = true
	}
	for _, id := range t.order {
		if p := t.touches[id]; p.ID != NoID && !still[id] {
			p.Release()
		}
	}
}

// Len returns the number of slots, the primary included.
func (t *Table) Len() int {
	return 1 + len(t.order)
}

// Each calls fn for the primary pointer, then each touch slot in insertion order.
func (t *Table) Each(fn func(*Pointer)) {
	fn(t.primary)
	for _, id := range t.order {
		fn(t.touches[id])
	}
}

// Snapshot returns copies of every slot in iteration order.
func (t *Table) Snapshot() []Pointer {
	out := make([]Pointer, 0, t.Len())
	t.Each(func(p *Pointer) { out = append(out, *p) })
	return out
}
