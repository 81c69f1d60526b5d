package steg

// NextCell advances a traversal by one step. Traversal is forward-only and
// never wraps; callers stop once the result reaches the end of the carrier.
func NextCell(current, step int) int {
	return current + step
}

// usableCells returns how many cells a traversal from start visits before
// running off a carrier of total cells.
func usableCells(total, start, step int) int {
	if start < 0 || start >= total || step < 1 {
		return 0
	}
	return (total - start + step - 1) / step
}

// cursor yields the cells of one traversal in order.
type cursor struct {
	cell    int
	step    int
	total   int
	started bool
}

func newCursor(start, step, total int) *cursor {
	return &cursor{cell: start, step: step, total: total}
}

// next returns the next cell, or false once the carrier is exhausted.
func (c *cursor) next() (int, bool) {
	if c.started {
		c.cell = NextCell(c.cell, c.step)
	}
	c.started = true
	if c.cell < 0 || c.cell >= c.total {
		return 0, false
	}
	return c.cell, true
}
