// Copyright 2025 Loam ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go CPU compute backend.
package cpu

import (
	internalcpu "github.com/loam-ml/loam/internal/backend/cpu"
	"github.com/loam-ml/loam/tensor"
)

// Backend represents the CPU backend implementation.
//
// It provides pure Go implementations of all tensor operations, using
// gonum's BLAS implementation for the float32 matrix-multiply kernel.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Compile-time check that Backend provides the fused NLL loss.
var _ tensor.NLLBackend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}
