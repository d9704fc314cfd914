package lanemask

// Mask is a row-major boolean grid at frame resolution; true marks a
// lane-boundary pixel.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) Mask {
	return Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// Set marks (x, y).
func (m Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Row returns the cells of row y. The slice aliases the mask.
func (m Mask) Row(y int) []bool {
	return m.Bits[y*m.Width : (y+1)*m.Width]
}

// Empty reports whether no pixel is set.
func (m Mask) Empty() bool {
	for _, b := range m.Bits {
		if b {
			return false
		}
	}
	return true
}

// FromClassMap marks every cell whose label equals classID.
func FromClassMap(c ClassMap, classID uint8) Mask {
	m := NewMask(c.Width, c.Height)
	for i, l := range c.Labels {
		m.Bits[i] = l == classID
	}
	return m
}

// Build resamples the model-resolution class map to the frame size and
// reduces it to a lane-boundary mask.
func Build(c ClassMap, width, height int, classID uint8) Mask {
	return FromClassMap(Resample(c, width, height), classID)
}
