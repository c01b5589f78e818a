// Package ops defines the differentiable operations recorded on the
// gradient tape. Each operation captures its inputs and output during the
// forward pass and knows how to compute input gradients from the output
// gradient.
package ops

import "github.com/loam-ml/loam/internal/tensor"

// Operation is a single recorded step of the forward computation.
type Operation interface {
	// Backward computes gradients for the operation's inputs given the
	// gradient of its output. The returned slice is parallel to Inputs().
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the tensors that receive gradients.
	Inputs() []*tensor.RawTensor

	// Output returns the operation's output tensor.
	Output() *tensor.RawTensor
}
