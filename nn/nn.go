// Copyright 2025 Loam ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for neural network modules.
//
// All layers use the feature-first tensor layout: activations are
// [features, ...trailing] and Linear maps [in, ...] to [out, ...].
package nn

import (
	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected layer computing W @ x + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	layer := nn.NewLinear(768, 3072, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Dense composes Linear, dropout, and an activation.
type Dense[B tensor.Backend] = nn.Dense[B]

// NewDense creates a Dense layer. Pass nil for activation to use the identity.
func NewDense[B tensor.Backend](inFeatures, outFeatures int, pdrop float32, activation Module[B], backend B) *Dense[B] {
	return nn.NewDense(inFeatures, outFeatures, pdrop, activation, backend)
}

// Embedding is a feature-first lookup table mapping indices to columns.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates an embedding table with N(0, 1) weights.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, backend)
}

// NewEmbeddingWithWeight creates an embedding table from a pre-initialized
// [embedDim, numEmbeddings] weight tensor.
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B]) *Embedding[B] {
	return nn.NewEmbeddingWithWeight(weight)
}

// LayerNorm normalizes over the feature axis (axis 0).
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a LayerNorm over a feature axis of the given size.
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm(normalizedShape, epsilon, backend)
}

// Dropout zeroes elements with probability p during training.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a Dropout layer. Panics if p is outside [0, 1).
func NewDropout[B tensor.Backend](p float32, backend B) *Dropout[B] {
	return nn.NewDropout(p, backend)
}

// Activations

// GELU is the Gaussian error linear unit activation.
type GELU[B tensor.Backend] = nn.GELU[B]

// NewGELU creates a GELU activation layer.
func NewGELU[B tensor.Backend]() *GELU[B] {
	return nn.NewGELU[B]()
}

// ReLU is the rectified linear unit activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Identity passes its input through unchanged.
type Identity[B tensor.Backend] = nn.Identity[B]

// NewIdentity creates an Identity activation layer.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return nn.NewIdentity[B]()
}

// ActivationByName returns the activation for a configuration string:
// "gelu", "relu", "tanh", or "identity".
func ActivationByName[B tensor.Backend](name string) Module[B] {
	return nn.ActivationByName[B](name)
}

// Loss functions

// NLLLoss is the negative-log-likelihood loss with ignore-index filtering.
type NLLLoss[B tensor.Backend] = nn.NLLLoss[B]

// NewNLLLoss creates an NLLLoss with the given ignore index.
func NewNLLLoss[B tensor.Backend](ignoreIndex int, backend B) *NLLLoss[B] {
	return nn.NewNLLLoss(ignoreIndex, backend)
}

// Initialization helpers

// Xavier creates a tensor initialized with Xavier/Glorot uniform values.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}
