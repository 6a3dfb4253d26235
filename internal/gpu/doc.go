// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu runs the GPU-capable retouch filters as wgpu/hal compute
// passes.
//
// The image lives in a storage buffer as packed RGBA8, one u32 per pixel.
// Each filter is a 16x16 workgroup compute shader that reads and rewrites
// that buffer in place; the result is copied to a staging buffer and read
// back after a fence wait. Shaders are written in WGSL and compiled to
// SPIR-V with naga.
package gpu
