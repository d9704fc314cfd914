// Package opencv binds the guidance pipeline to OpenCV through gocv: video
// capture and encoding, the DNN lane segmenter, overlay drawing and the
// preview window. Every type here owns native memory and must be closed.
package opencv
