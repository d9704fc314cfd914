package lanemask

import (
	"errors"
	"fmt"
)

// DefaultLaneClassID is the label the YOLOP lane head assigns to lane-boundary pixels.
const DefaultLaneClassID = 1

// ErrInvalidTensor is returned when a logits tensor does not match its declared shape.
var ErrInvalidTensor = errors.New("invalid logits tensor")

// ClassMap is a row-major grid of integer class labels.
type ClassMap struct {
	Width  int
	Height int
	Labels []uint8
}

// NewClassMap allocates a zeroed (all background) class map.
func NewClassMap(width, height int) ClassMap {
	return ClassMap{
		Width:  width,
		Height: height,
		Labels: make([]uint8, width*height),
	}
}

// Set writes the label at column x, row y.
func (c ClassMap) Set(x, y int, label uint8) {
	c.Labels[y*c.Width+x] = label
}

// Count returns how many cells carry the given label.
func (c ClassMap) Count(label uint8) int {
	n := 0
	for _, l := range c.Labels {
		if l == label {
			n++
		}
	}
	return n
}

// ArgMax reduces a classes×height×width logits volume (CHW, row-major) to a
// class map by picking the highest-scoring class per pixel. Ties resolve to
// the lowest class index.
func ArgMax(logits []float32, classes, height, width int) (ClassMap, error) {
	if classes <= 0 || height <= 0 || width <= 0 {
		return ClassMap{}, fmt.Errorf("%w: shape %dx%dx%d", ErrInvalidTensor, classes, height, width)
	}
	if classes > 256 {
		return ClassMap{}, fmt.Errorf("%w: %d classes exceed label range", ErrInvalidTensor, classes)
	}
	plane := height * width
	if len(logits) < classes*plane {
		return ClassMap{}, fmt.Errorf("%w: have %d values, need %d", ErrInvalidTensor, len(logits), classes*plane)
	}

	cm := NewClassMap(width, height)
	for i := 0; i < plane; i++ {
		best := logits[i]
		bestClass := 0
		for c := 1; c < classes; c++ {
			if v := logits[c*plane+i]; v > best {
				best = v
				bestClass = c
			}
		}
		cm.Labels[i] = uint8(bestClass)
	}
	return cm, nil
}

// Resample maps the class map to width×height with nearest-neighbour
// selection. Source coordinates follow OpenCV INTER_NEAREST:
// sx = floor(x * srcW / width), clamped to the last column.
func Resample(src ClassMap, width, height int) ClassMap {
	dst := NewClassMap(width, height)
	if src.Width == 0 || src.Height == 0 || width == 0 || height == 0 {
		return dst
	}

	xIndex := nearestIndex(src.Width, width)
	for y := 0; y < height; y++ {
		sy := nearest(y, src.Height, height)
		srcRow := src.Labels[sy*src.Width : (sy+1)*src.Width]
		dstRow := dst.Labels[y*width : (y+1)*width]
		for x, sx := range xIndex {
			dstRow[x] = srcRow[sx]
		}
	}
	return dst
}

func nearestIndex(srcLen, dstLen int) []int {
	idx := make([]int, dstLen)
	for i := range idx {
		idx[i] = nearest(i, srcLen, dstLen)
	}
	return idx
}

func nearest(i, srcLen, dstLen int) int {
	s := i * srcLen / dstLen
	if s >= srcLen {
		s = srcLen - 1
	}
	return s
}
