package nn

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// NLLLoss computes the negative-log-likelihood of class-first logits
// against integer targets, averaged over non-ignored samples.
//
// Logits have shape [numClasses, n]; targets have shape [n] (int32).
// Samples whose target equals IgnoreIndex contribute neither to the loss
// nor to the gradient. If every sample is ignored the loss is exactly 0.
type NLLLoss[B tensor.Backend] struct {
	IgnoreIndex int
	backend     B
}

// NewNLLLoss creates an NLLLoss with the given ignore index. Use -1 for
// masked-language-model targets where -1 marks unmasked positions.
func NewNLLLoss[B tensor.Backend](ignoreIndex int, backend B) *NLLLoss[B] {
	return &NLLLoss[B]{IgnoreIndex: ignoreIndex, backend: backend}
}

// Forward computes the scalar loss as a [1] tensor.
//
// The backend must implement tensor.NLLBackend; the autodiff decorator
// forwards to the inner backend and records the fused gradient.
func (l *NLLLoss[B]) Forward(logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	nll, ok := any(l.backend).(tensor.NLLBackend)
	if !ok {
		panic(fmt.Sprintf("NLLLoss: backend %s does not implement NLLLoss", l.backend.Name()))
	}
	raw := nll.NLLLoss(logits.Raw(), targets.Raw(), l.IgnoreIndex)
	return tensor.New[float32, B](raw, l.backend)
}

// Parameters returns an empty slice; the loss has no trainable parameters.
func (l *NLLLoss[B]) Parameters() []*Parameter[B] {
	return nil
}
