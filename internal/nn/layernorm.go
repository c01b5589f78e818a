package nn

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// LayerNorm applies layer normalization over the feature axis (axis 0).
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// Mean and variance are computed along axis 0 for each (seq, batch)
// position independently; variance is the uncorrected (biased) estimate.
// Gamma is initialized to ones, beta to zeros.
type LayerNorm[B tensor.Backend] struct {
	Gamma   *Parameter[B] // learnable scale [features]
	Beta    *Parameter[B] // learnable shift [features]
	Epsilon float32
	size    int
	backend B
}

// NewLayerNorm creates a new LayerNorm over a feature axis of the given
// size. Epsilon is typically 1e-12 for BERT-style models.
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	gamma := tensor.Ones[float32](tensor.Shape{normalizedShape}, backend)
	beta := tensor.Zeros[float32](tensor.Shape{normalizedShape}, backend)

	return &LayerNorm[B]{
		Gamma:   NewParameter("gamma", gamma),
		Beta:    NewParameter("beta", beta),
		Epsilon: epsilon,
		size:    normalizedShape,
		backend: backend,
	}
}

// Forward applies LayerNorm to the input tensor.
//
// Shapes: [features, ...] -> [features, ...]
func (l *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if shape[0] != l.size {
		panic(fmt.Sprintf("LayerNorm.Forward: expected %d features on axis 0, got %d", l.size, shape[0]))
	}

	mean := x.MeanDim(0, true)
	xCentered := x.Sub(mean)

	variance := xCentered.Mul(xCentered).MeanDim(0, true)
	invStd := variance.AddScalar(l.Epsilon).Rsqrt()

	xNorm := xCentered.Mul(invStd)

	// Gamma and beta are [features]; reshape to [features, 1, ..., 1] so
	// broadcasting applies them along axis 0.
	paramShape := make(tensor.Shape, len(shape))
	paramShape[0] = l.size
	for i := 1; i < len(paramShape); i++ {
		paramShape[i] = 1
	}
	gamma := l.Gamma.Tensor().Reshape(paramShape...)
	beta := l.Beta.Tensor().Reshape(paramShape...)

	return xNorm.Mul(gamma).Add(beta)
}

// Parameters returns the learnable parameters (gamma and beta).
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Gamma, l.Beta}
}
