package bert

import (
	"fmt"

	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// EmbedLayer composes the three input embeddings (token, position,
// segment), layer normalization over the embedding axis, and dropout.
//
// Token ids and segment ids come in as [seq, batch]; the output is
// [embed, seq, batch]. Position ids are generated per forward call as a
// constant [seq, batch] matrix whose value at row s is s, so sequences
// shorter than MaxSeqLen just use a prefix of the positional table.
type EmbedLayer[B tensor.Backend] struct {
	word     *nn.Embedding[B]
	position *nn.Embedding[B]
	segment  *nn.Embedding[B]
	norm     *nn.LayerNorm[B]
	dropout  *nn.Dropout[B]
	backend  B
}

// NewEmbedLayer creates the embedding stack from the configuration.
func NewEmbedLayer[B tensor.Backend](cfg *Config, backend B) *EmbedLayer[B] {
	return &EmbedLayer[B]{
		word:     nn.NewEmbedding(cfg.VocabSize, cfg.EmbedSize, backend),
		position: nn.NewEmbedding(cfg.MaxSeqLen, cfg.EmbedSize, backend),
		segment:  nn.NewEmbedding(cfg.NumSegment, cfg.EmbedSize, backend),
		norm:     nn.NewLayerNorm(cfg.EmbedSize, 1e-12, backend),
		dropout:  nn.NewDropout(cfg.PDrop, backend),
		backend:  backend,
	}
}

// Forward embeds token and segment ids into [embed, seq, batch].
func (e *EmbedLayer[B]) Forward(tokenIDs, segmentIDs *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	shape := tokenIDs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("EmbedLayer.Forward: expected [seq, batch] token ids, got shape %v", shape))
	}
	seqLen, batch := shape[0], shape[1]
	if seqLen > e.position.NumEmbed {
		panic(fmt.Sprintf("EmbedLayer.Forward: sequence length %d exceeds positional table size %d", seqLen, e.position.NumEmbed))
	}

	x := e.word.Forward(tokenIDs)
	x = x.Add(e.position.Forward(e.positionIDs(seqLen, batch)))
	x = x.Add(e.segment.Forward(segmentIDs))

	return e.dropout.Forward(e.norm.Forward(x))
}

// positionIDs builds the constant [seq, batch] index matrix with value s
// at row s.
func (e *EmbedLayer[B]) positionIDs(seqLen, batch int) *tensor.Tensor[int32, B] {
	ids := make([]int32, seqLen*batch)
	for s := 0; s < seqLen; s++ {
		for b := 0; b < batch; b++ {
			ids[s*batch+b] = int32(s)
		}
	}
	t, err := tensor.FromSlice[int32, B](ids, tensor.Shape{seqLen, batch}, e.backend)
	if err != nil {
		panic(fmt.Sprintf("EmbedLayer: failed to create position ids: %v", err))
	}
	return t
}

// SetTraining switches the dropout between training and evaluation modes.
func (e *EmbedLayer[B]) SetTraining(training bool) {
	e.dropout.SetTraining(training)
}

// Parameters returns the embedding tables and layer-norm parameters.
func (e *EmbedLayer[B]) Parameters() []*nn.Parameter[B] {
	params := e.word.Parameters()
	params = append(params, e.position.Parameters()...)
	params = append(params, e.segment.Parameters()...)
	params = append(params, e.norm.Parameters()...)
	return params
}
