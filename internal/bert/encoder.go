package bert

import (
	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// Encoder is one transformer block: self-attention and feed-forward
// sublayers, each wrapped in a post-residual layer norm:
//
//	x1 = LN1(x + attention(x, mask))
//	x2 = LN2(x1 + FF(x1))
//
// Both residual additions use the pre-sublayer input. Normalization after
// the residual (post-norm) is fixed, not configurable.
type Encoder[B tensor.Backend] struct {
	attention *SelfAttention[B]
	norm1     *nn.LayerNorm[B]
	ff        *FeedForward[B]
	norm2     *nn.LayerNorm[B]
}

// NewEncoder creates one encoder block from the configuration.
func NewEncoder[B tensor.Backend](cfg *Config, backend B) *Encoder[B] {
	return &Encoder[B]{
		attention: NewSelfAttention(cfg, backend),
		norm1:     nn.NewLayerNorm(cfg.EmbedSize, 1e-12, backend),
		ff:        NewFeedForward(cfg, backend),
		norm2:     nn.NewLayerNorm(cfg.EmbedSize, 1e-12, backend),
	}
}

// Forward runs the block on x [embed, seq, batch] with the shared
// additive attention mask.
func (e *Encoder[B]) Forward(x *tensor.Tensor[float32, B], maskBias *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x1 := e.norm1.Forward(x.Add(e.attention.Forward(x, maskBias)))
	return e.norm2.Forward(x1.Add(e.ff.Forward(x1)))
}

// Attention returns the attention sublayer.
func (e *Encoder[B]) Attention() *SelfAttention[B] {
	return e.attention
}

// SetTraining propagates the mode to both sublayers.
func (e *Encoder[B]) SetTraining(training bool) {
	e.attention.SetTraining(training)
	e.ff.SetTraining(training)
}

// Parameters returns all parameters of the block.
func (e *Encoder[B]) Parameters() []*nn.Parameter[B] {
	params := e.attention.Parameters()
	params = append(params, e.norm1.Parameters()...)
	params = append(params, e.ff.Parameters()...)
	params = append(params, e.norm2.Parameters()...)
	return params
}
