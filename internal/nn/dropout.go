package nn

import (
	"fmt"
	"math/rand"

	"github.com/loam-ml/loam/internal/tensor"
)

// Dropout zeroes each element independently with probability p during
// training and rescales survivors by 1/(1-p), so activations keep their
// expected magnitude. In evaluation mode it is the identity.
//
// The layer multiplies by a freshly sampled constant mask, so gradients
// flow through the surviving elements only.
type Dropout[B tensor.Backend] struct {
	p        float32
	training bool
	backend  B
}

// NewDropout creates a Dropout layer. Panics if p is outside [0, 1).
func NewDropout[B tensor.Backend](p float32, backend B) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}
	return &Dropout[B]{p: p, training: true, backend: backend}
}

// SetTraining switches between training (dropout active) and evaluation
// (identity) modes.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the layer is in training mode.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// Forward applies dropout to the input tensor.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}

	raw, err := tensor.NewRaw(input.Shape(), tensor.Float32, d.backend.Device())
	if err != nil {
		panic(fmt.Sprintf("Dropout: failed to create mask: %v", err))
	}

	scale := 1.0 / (1.0 - d.p)
	mask := raw.AsFloat32()
	for i := range mask {
		//nolint:gosec // math/rand is appropriate for dropout sampling
		if rand.Float32() >= d.p {
			mask[i] = scale
		}
	}

	return input.Mul(tensor.New[float32, B](raw, d.backend))
}

// Parameters returns an empty slice; dropout has no trainable parameters.
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
