// Package lanemask turns the lane-segmentation output of the perception model
// into a frame-resolution boolean mask.
//
// Responsibilities: arg-max over the class axis of the lane logits, nearest
// neighbour resampling of the class map to frame size, and reduction of the
// resampled labels to "is lane boundary".
// Key types: ClassMap, Mask.
//
// Labels are never interpolated, only selected, so a resampled cell always
// carries a label that exists in the source map.
package lanemask
