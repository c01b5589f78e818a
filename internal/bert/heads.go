package bert

import (
	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// Pooler projects the first sequence position (the CLS slot) of the
// encoder output through a Linear layer and tanh:
// [embed, seq, batch] -> [embed, batch].
type Pooler[B tensor.Backend] struct {
	linear *nn.Linear[B]
}

// NewPooler creates the pooler from the configuration.
func NewPooler[B tensor.Backend](cfg *Config, backend B) *Pooler[B] {
	return &Pooler[B]{linear: nn.NewLinear(cfg.EmbedSize, cfg.EmbedSize, backend)}
}

// Forward extracts sequence position 0 and applies Linear then tanh.
func (p *Pooler[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return p.linear.Forward(x.IndexSelect(1, 0)).Tanh()
}

// Parameters returns the linear layer's parameters.
func (p *Pooler[B]) Parameters() []*nn.Parameter[B] {
	return p.linear.Parameters()
}

// NSPHead produces next-sentence-prediction logits from the pooled
// representation: [embed, batch] -> [2, batch].
type NSPHead[B tensor.Backend] struct {
	linear *nn.Linear[B]
}

// NewNSPHead creates the NSP classification head.
func NewNSPHead[B tensor.Backend](cfg *Config, backend B) *NSPHead[B] {
	return &NSPHead[B]{linear: nn.NewLinear(cfg.EmbedSize, 2, backend)}
}

// Forward computes the binary classification logits.
func (h *NSPHead[B]) Forward(pooled *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return h.linear.Forward(pooled)
}

// Parameters returns the linear layer's parameters.
func (h *NSPHead[B]) Parameters() []*nn.Parameter[B] {
	return h.linear.Parameters()
}

// MLMHead produces per-position vocabulary logits: Dense, LayerNorm, then
// a decoder Linear into the vocabulary.
// [embed, seq, batch] -> [vocab, seq, batch].
type MLMHead[B tensor.Backend] struct {
	dense   *nn.Dense[B]
	norm    *nn.LayerNorm[B]
	decoder *nn.Linear[B]
}

// NewMLMHead creates the masked-language-model head from the
// configuration.
func NewMLMHead[B tensor.Backend](cfg *Config, backend B) *MLMHead[B] {
	return &MLMHead[B]{
		dense:   nn.NewDense(cfg.EmbedSize, cfg.EmbedSize, cfg.PDrop, nn.ActivationByName[B](cfg.Activation), backend),
		norm:    nn.NewLayerNorm(cfg.EmbedSize, 1e-12, backend),
		decoder: nn.NewLinear(cfg.EmbedSize, cfg.VocabSize, backend),
	}
}

// Forward computes vocabulary logits at every sequence position.
func (h *MLMHead[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return h.decoder.Forward(h.norm.Forward(h.dense.Forward(x)))
}

// SetTraining switches the dense dropout between training and evaluation.
func (h *MLMHead[B]) SetTraining(training bool) {
	h.dense.SetTraining(training)
}

// Parameters returns all head parameters.
func (h *MLMHead[B]) Parameters() []*nn.Parameter[B] {
	params := h.dense.Parameters()
	params = append(params, h.norm.Parameters()...)
	params = append(params, h.decoder.Parameters()...)
	return params
}
