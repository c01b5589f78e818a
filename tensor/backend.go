// Copyright 2025 Loam ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/loam-ml/loam/internal/tensor"
)

// Backend is the interface every compute backend implements: element-wise
// arithmetic with broadcasting, scalar ops, matrix and batched matrix
// multiplication, reshape/transpose, activations, softmax, reductions,
// and embedding lookups.
type Backend = tensor.Backend

// NLLBackend is implemented by backends that provide the fused
// negative-log-likelihood loss primitive.
type NLLBackend = tensor.NLLBackend
