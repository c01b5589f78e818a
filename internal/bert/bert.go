package bert

import (
	"fmt"

	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

const maskPenalty = -10000

// Bert is the embedding stack plus a sequence of encoder blocks.
type Bert[B tensor.Backend] struct {
	embed    *EmbedLayer[B]
	encoders []*Encoder[B]
	backend  B
}

// NewBert builds the model from the configuration. Panics on invalid
// configurations (see Config.Validate and NewSelfAttention).
func NewBert[B tensor.Backend](cfg *Config, backend B) *Bert[B] {
	cfg.Validate()

	encoders := make([]*Encoder[B], cfg.NumEncoder)
	for i := range encoders {
		encoders[i] = NewEncoder(cfg, backend)
	}

	return &Bert[B]{
		embed:    NewEmbedLayer(cfg, backend),
		encoders: encoders,
		backend:  backend,
	}
}

// Forward embeds the inputs and threads them through every encoder block.
//
// tokenIDs and segmentIDs are [seq, batch]. mask is an optional [seq,
// batch] tensor of 0/1 values (1 = attend, 0 = masked/padding); nil means
// attend everywhere. The same additive mask bias is shared by all blocks.
//
// Returns the sequence output [embed, seq, batch].
func (m *Bert[B]) Forward(tokenIDs, segmentIDs *tensor.Tensor[int32, B], mask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := tokenIDs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Bert.Forward: expected [seq, batch] token ids, got shape %v", shape))
	}
	seqLen, batch := shape[0], shape[1]

	maskBias := m.maskBias(mask, seqLen, batch)

	x := m.embed.Forward(tokenIDs, segmentIDs)
	for _, enc := range m.encoders {
		x = enc.Forward(x, maskBias)
	}
	return x
}

// maskBias converts a 0/1 attention mask into the additive bias
// (1-mask)*-10000 reshaped to [seq, 1, 1, batch] so it broadcasts over
// the query and head axes. A nil mask means attend everywhere, which
// yields an all-zero bias.
func (m *Bert[B]) maskBias(mask *tensor.Tensor[float32, B], seqLen, batch int) *tensor.Tensor[float32, B] {
	if mask == nil {
		mask = tensor.Ones[float32](tensor.Shape{seqLen, batch}, m.backend)
	} else if s := mask.Shape(); len(s) != 2 || s[0] != seqLen || s[1] != batch {
		panic(fmt.Sprintf("Bert.Forward: attention mask shape %v does not match inputs [%d %d]", s, seqLen, batch))
	}

	return mask.MulScalar(-1).AddScalar(1).
		MulScalar(maskPenalty).
		Reshape(seqLen, 1, 1, batch)
}

// Embed returns the embedding stack.
func (m *Bert[B]) Embed() *EmbedLayer[B] {
	return m.embed
}

// Encoders returns the encoder blocks in order.
func (m *Bert[B]) Encoders() []*Encoder[B] {
	return m.encoders
}

// SetTraining propagates the mode through the whole stack.
func (m *Bert[B]) SetTraining(training bool) {
	m.embed.SetTraining(training)
	for _, enc := range m.encoders {
		enc.SetTraining(training)
	}
}

// Parameters returns every trainable parameter of the model.
func (m *Bert[B]) Parameters() []*nn.Parameter[B] {
	params := m.embed.Parameters()
	for _, enc := range m.encoders {
		params = append(params, enc.Parameters()...)
	}
	return params
}
