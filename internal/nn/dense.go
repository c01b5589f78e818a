package nn

import (
	"github.com/loam-ml/loam/internal/tensor"
)

// Dense composes a Linear layer with dropout and an activation:
//
//	Dense(x) = activation(dropout(Linear(x)))
//
// The activation defaults to identity when nil is passed.
type Dense[B tensor.Backend] struct {
	linear     *Linear[B]
	dropout    *Dropout[B]
	activation Module[B]
}

// NewDense creates a Dense layer. Pass nil for activation to use the
// identity.
func NewDense[B tensor.Backend](inFeatures, outFeatures int, pdrop float32, activation Module[B], backend B) *Dense[B] {
	if activation == nil {
		activation = NewIdentity[B]()
	}
	return &Dense[B]{
		linear:     NewLinear(inFeatures, outFeatures, backend),
		dropout:    NewDropout(pdrop, backend),
		activation: activation,
	}
}

// Forward applies the linear map, dropout, then the activation.
func (d *Dense[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return d.activation.Forward(d.dropout.Forward(d.linear.Forward(input)))
}

// SetTraining switches the dropout between training and evaluation modes.
func (d *Dense[B]) SetTraining(training bool) {
	d.dropout.SetTraining(training)
}

// Linear returns the inner linear layer.
func (d *Dense[B]) Linear() *Linear[B] {
	return d.linear
}

// Parameters returns the trainable parameters of the inner linear layer.
func (d *Dense[B]) Parameters() []*Parameter[B] {
	return d.linear.Parameters()
}
