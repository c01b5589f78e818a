package bert

import (
	"fmt"
	"math"

	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// SelfAttention implements multi-head scaled dot-product attention in
// feature-first layout.
//
// The head split collapses heads and batch into one trailing axis so a
// single batched matmul covers every (head, batch) pair:
//
//	[E,S,B] -> reshape [H,N,S,B] -> permute [H,S,N,B] -> reshape [H,S,N*B]
//
// where E = N*H (N heads of size H). Scores are [S,S,N*B] with softmax
// over the key axis (axis 0). The merge is the exact inverse of the
// split; the two must stay in lockstep or head outputs land in the wrong
// embedding slices.
type SelfAttention[B tensor.Backend] struct {
	query  *nn.Linear[B]
	key    *nn.Linear[B]
	value  *nn.Linear[B]
	output *nn.Linear[B]

	attnDropout *nn.Dropout[B]
	outDropout  *nn.Dropout[B]

	numHeads int
	headSize int
	scale    float32 // 1/sqrt(headSize), fixed at construction
}

// NewSelfAttention creates a multi-head attention layer.
//
// Panics if embed_size is not divisible by num_heads, or if the resulting
// head size does not have an integer square root. Both are configuration
// errors caught here rather than as shape failures mid-forward.
func NewSelfAttention[B tensor.Backend](cfg *Config, backend B) *SelfAttention[B] {
	if cfg.EmbedSize%cfg.NumHeads != 0 {
		panic(fmt.Sprintf("self-attention: embed size %d is not divisible by %d heads", cfg.EmbedSize, cfg.NumHeads))
	}
	headSize := cfg.EmbedSize / cfg.NumHeads
	root := math.Sqrt(float64(headSize))
	if root != math.Trunc(root) {
		panic(fmt.Sprintf("self-attention: head size %d must have an integer square root", headSize))
	}

	return &SelfAttention[B]{
		query:       nn.NewLinear(cfg.EmbedSize, cfg.EmbedSize, backend),
		key:         nn.NewLinear(cfg.EmbedSize, cfg.EmbedSize, backend),
		value:       nn.NewLinear(cfg.EmbedSize, cfg.EmbedSize, backend),
		output:      nn.NewLinear(cfg.EmbedSize, cfg.EmbedSize, backend),
		attnDropout: nn.NewDropout(cfg.AttentionPDrop, backend),
		outDropout:  nn.NewDropout(cfg.PDrop, backend),
		numHeads:    cfg.NumHeads,
		headSize:    headSize,
		scale:       float32(1.0 / root),
	}
}

// Forward computes attention over x [embed, seq, batch].
//
// maskBias is an additive bias of shape [seq, 1, 1, batch] holding 0 for
// attendable positions and a large negative value for masked ones; it is
// broadcast over the query and head axes before the softmax.
func (a *SelfAttention[B]) Forward(x *tensor.Tensor[float32, B], maskBias *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	seqLen, batch := shape[1], shape[2]

	q := a.splitHeads(a.query.Forward(x), seqLen, batch)
	k := a.splitHeads(a.key.Forward(x), seqLen, batch)
	v := a.splitHeads(a.value.Forward(x), seqLen, batch)

	// Raw scores: per (head, batch) lane, K^T @ Q gives [S,S].
	scores := k.Transpose(1, 0, 2).BatchMatMul(q).MulScalar(a.scale)

	// Mask in 4D so the bias broadcasts over heads, then back to 3D for
	// the softmax and weighted sum.
	scores = scores.Reshape(seqLen, seqLen, a.numHeads, batch).
		Add(maskBias).
		Reshape(seqLen, seqLen, a.numHeads*batch)

	weights := a.attnDropout.Forward(scores.Softmax(0))

	out := a.mergeHeads(v.BatchMatMul(weights), seqLen, batch)

	return a.outDropout.Forward(a.output.Forward(out))
}

// splitHeads maps [E,S,B] to [H,S,N*B].
func (a *SelfAttention[B]) splitHeads(t *tensor.Tensor[float32, B], seqLen, batch int) *tensor.Tensor[float32, B] {
	return t.Reshape(a.headSize, a.numHeads, seqLen, batch).
		Transpose(0, 2, 1, 3).
		Reshape(a.headSize, seqLen, a.numHeads*batch)
}

// mergeHeads maps [H,S,N*B] back to [E,S,B], the inverse of splitHeads.
func (a *SelfAttention[B]) mergeHeads(t *tensor.Tensor[float32, B], seqLen, batch int) *tensor.Tensor[float32, B] {
	return t.Reshape(a.headSize, seqLen, a.numHeads, batch).
		Transpose(0, 2, 1, 3).
		Reshape(a.headSize*a.numHeads, seqLen, batch)
}

// SetTraining switches both dropouts between training and evaluation.
func (a *SelfAttention[B]) SetTraining(training bool) {
	a.attnDropout.SetTraining(training)
	a.outDropout.SetTraining(training)
}

// NumHeads returns the number of attention heads.
func (a *SelfAttention[B]) NumHeads() int {
	return a.numHeads
}

// HeadSize returns the per-head feature size.
func (a *SelfAttention[B]) HeadSize() int {
	return a.headSize
}

// Query returns the query projection.
func (a *SelfAttention[B]) Query() *nn.Linear[B] { return a.query }

// Key returns the key projection.
func (a *SelfAttention[B]) Key() *nn.Linear[B] { return a.key }

// Value returns the value projection.
func (a *SelfAttention[B]) Value() *nn.Linear[B] { return a.value }

// Output returns the output projection.
func (a *SelfAttention[B]) Output() *nn.Linear[B] { return a.output }

// Parameters returns the four projection layers' parameters.
func (a *SelfAttention[B]) Parameters() []*nn.Parameter[B] {
	params := a.query.Parameters()
	params = append(params, a.key.Parameters()...)
	params = append(params, a.value.Parameters()...)
	params = append(params, a.output.Parameters()...)
	return params
}
