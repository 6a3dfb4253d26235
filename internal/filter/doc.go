// Package filter implements the CPU kernels of the retouch pipeline.
//
// Kernels fall into two groups:
//   - in-place adjustments on spaces.Planes (Exposure, Saturate, Sharpen)
//   - RGB kernels that return a new pixel.Image and never modify their
//     input (BoxBlur, GaussianBlur, Contrast, WhiteBalance)
//
// Every kernel takes an optional *parallel.WorkerPool and splits its work
// across image rows; a nil pool runs on the calling goroutine.
package filter
