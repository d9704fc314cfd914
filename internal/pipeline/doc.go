// Package pipeline runs the per-frame lane guidance loop.
//
// It wires a frame source, the segmentation model, the lane mask resampler,
// the clearance evaluator and the output collaborators (annotator, video
// writer, preview, measurement sinks) into one strictly sequential loop.
// The pipeline does not own domain logic and does not own resources: the
// caller opens every collaborator and closes it after Run returns.
//
// Runner is generic over the frame type so the loop can be exercised with
// plain Go values in tests and with OpenCV matrices in production.
package pipeline
