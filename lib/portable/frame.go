package portable

// frame is the encoding context of the record whose body is currently being written.
// Frames nest with the call stack of writeContext.Write: every full record
// installs its own frame and the enclosing one is put back when it returns.
type frame struct {
	typeID int32
	mapper IIdResolver
	raw    bool
	rawPos int // absolute offset of the raw section, 0 if never switched
}

// enterFrame installs f as the active frame and returns a function that
// restores the enclosing frame. Callers defer it, so the enclosing frame is
// restored on every exit path, including failing serializer callbacks.
func (c *writeContext) enterFrame(f frame) (restore func()) {
	saved := c.frame
	c.frame = f
	c.depth++
	if c.depth > c.maxDepth {
		c.maxDepth = c.depth
	}
	return func() {
		c.frame = saved
		c.depth--
	}
}

// switchToRaw marks the active frame as raw, recording the current offset once
func (c *writeContext) switchToRaw() {
	if c.frame.raw {
		return
	}
	c.frame.raw = true
	c.frame.rawPos = c.stream.Position()
}
