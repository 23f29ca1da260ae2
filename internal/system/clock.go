package system

// Clock is the tick counter shared by the demo systems. The host advances it
// once per tick before running execute.
type Clock struct {
	Frame uint64
}

func (c *Clock) Advance() uint64 {
	c.Frame++
	return c.Frame
}
