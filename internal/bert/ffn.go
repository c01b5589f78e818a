package bert

import (
	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// FeedForward is the position-wise two-layer transformation:
//
//	FF(x) = Linear2(dropout(activation(Linear1(x))))
//
// Linear1 expands embed_size to ff_hidden_size; Linear2 projects back.
type FeedForward[B tensor.Backend] struct {
	linear1    *nn.Linear[B]
	linear2    *nn.Linear[B]
	dropout    *nn.Dropout[B]
	activation nn.Module[B]
}

// NewFeedForward creates the feed-forward block from the configuration.
func NewFeedForward[B tensor.Backend](cfg *Config, backend B) *FeedForward[B] {
	return &FeedForward[B]{
		linear1:    nn.NewLinear(cfg.EmbedSize, cfg.FFHiddenSize, backend),
		linear2:    nn.NewLinear(cfg.FFHiddenSize, cfg.EmbedSize, backend),
		dropout:    nn.NewDropout(cfg.PDrop, backend),
		activation: nn.ActivationByName[B](cfg.Activation),
	}
}

// Forward applies the transformation at every (seq, batch) position.
func (f *FeedForward[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return f.linear2.Forward(f.dropout.Forward(f.activation.Forward(f.linear1.Forward(x))))
}

// SetTraining switches the dropout between training and evaluation modes.
func (f *FeedForward[B]) SetTraining(training bool) {
	f.dropout.SetTraining(training)
}

// Parameters returns both linear layers' parameters.
func (f *FeedForward[B]) Parameters() []*nn.Parameter[B] {
	params := f.linear1.Parameters()
	params = append(params, f.linear2.Parameters()...)
	return params
}
