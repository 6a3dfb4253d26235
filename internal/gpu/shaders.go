// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/retouch"
)

//go:embed shaders/common.wgsl
var commonShaderSource string

//go:embed shaders/exposition.wgsl
var expositionShaderSource string

//go:embed shaders/saturation.wgsl
var saturationShaderSource string

//go:embed shaders/whitebalance.wgsl
var whiteBalanceShaderSource string

// shaderKinds lists the filters with a compute shader, in pipeline order.
var shaderKinds = []retouch.FilterKind{retouch.Exposition, retouch.WhiteBalance, retouch.Saturation}

// ShaderSource returns the complete WGSL module for kind, or "" if kind
// has no shader.
func ShaderSource(kind retouch.FilterKind) string {
	var body string
	switch kind {
	case retouch.Exposition:
		body = expositionShaderSource
	case retouch.Saturation:
		body = saturationShaderSource
	case retouch.WhiteBalance:
		body = whiteBalanceShaderSource
	default:
		return ""
	}
	return commonShaderSource + "\n" + body
}

// CompileShader compiles the WGSL module of kind to SPIR-V words.
func CompileShader(kind retouch.FilterKind) ([]uint32, error) {
	src := ShaderSource(kind)
	if src == "" {
		return nil, fmt.Errorf("%w: no shader for %s", retouch.ErrShadersNotCompiled, kind)
	}
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", retouch.ErrShadersNotCompiled, kind, err)
	}
	return spirvWords(spirvBytes), nil
}

// CompileShaders compiles every filter shader.
func CompileShaders() (map[retouch.FilterKind][]uint32, error) {
	out := make(map[retouch.FilterKind][]uint32, len(shaderKinds))
	for _, k := range shaderKinds {
		code, err := CompileShader(k)
		if err != nil {
			return nil, err
		}
		out[k] = code
	}
	return out, nil
}

// spirvWords converts little-endian SPIR-V bytes to 32-bit words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
