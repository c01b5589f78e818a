// Package nn implements neural network modules for the Loam ML Framework.
//
// This package provides the building blocks the transformer model is
// assembled from:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable parameters with gradient tracking
//   - Linear, Dense: fully connected layers (feature-first layout)
//   - Embedding: index-to-vector lookup tables
//   - LayerNorm: normalization over the feature axis
//   - Dropout: stochastic regularization with train/eval modes
//   - Activations: GELU, ReLU, Tanh, Identity
//   - NLLLoss: negative-log-likelihood with ignore-index filtering
//
// All layers use the feature-first tensor layout: activations are
// [features, seq, batch] and Linear maps [in, ...] to [out, ...].
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/loam-ml/loam/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: compute output from input
//   - Parameters: return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [in_features, ...].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Returns an empty slice for
	// modules without trainable parameters (e.g. activation functions).
	Parameters() []*Parameter[B]
}
