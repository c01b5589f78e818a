package bert

import (
	"github.com/loam-ml/loam/internal/nn"
	"github.com/loam-ml/loam/internal/tensor"
)

// MLMIgnoreIndex marks sequence positions that were not masked; labels
// with this value contribute nothing to the MLM loss or its gradient.
const MLMIgnoreIndex = -1

// PreTrainingOutput bundles the logits and losses of one pretraining
// forward pass. All losses are [1] tensors.
type PreTrainingOutput[B tensor.Backend] struct {
	MLMLogits *tensor.Tensor[float32, B] // [vocab, seq, batch]
	NSPLogits *tensor.Tensor[float32, B] // [2, batch]
	MLMLoss   *tensor.Tensor[float32, B]
	NSPLoss   *tensor.Tensor[float32, B]
	Loss      *tensor.Tensor[float32, B] // MLMLoss + NSPLoss
}

// BertPreTraining composes Bert with the pooler and both pretraining
// heads and computes the combined scalar loss.
type BertPreTraining[B tensor.Backend] struct {
	bert    *Bert[B]
	pooler  *Pooler[B]
	nsp     *NSPHead[B]
	mlm     *MLMHead[B]
	mlmLoss *nn.NLLLoss[B]
	nspLoss *nn.NLLLoss[B]
}

// NewBertPreTraining builds the full pretraining model from the
// configuration.
func NewBertPreTraining[B tensor.Backend](cfg *Config, backend B) *BertPreTraining[B] {
	return &BertPreTraining[B]{
		bert:    NewBert(cfg, backend),
		pooler:  NewPooler(cfg, backend),
		nsp:     NewNSPHead(cfg, backend),
		mlm:     NewMLMHead(cfg, backend),
		mlmLoss: nn.NewNLLLoss(MLMIgnoreIndex, backend),
		nspLoss: nn.NewNLLLoss(MLMIgnoreIndex, backend),
	}
}

// Forward runs one pretraining step's forward pass.
//
// tokenIDs, segmentIDs and mlmLabels are [seq, batch]; mlmLabels holds
// the original token id at masked positions and MLMIgnoreIndex
// everywhere else. nspLabels is [batch] with 0/1 classes. mask is an
// optional [seq, batch] 0/1 attention mask (nil = attend everywhere).
//
// The combined loss is the unweighted sum of the MLM and NSP losses.
func (m *BertPreTraining[B]) Forward(
	tokenIDs, segmentIDs *tensor.Tensor[int32, B],
	mask *tensor.Tensor[float32, B],
	mlmLabels, nspLabels *tensor.Tensor[int32, B],
) *PreTrainingOutput[B] {
	seq := m.bert.Forward(tokenIDs, segmentIDs, mask)

	nspLogits := m.nsp.Forward(m.pooler.Forward(seq))
	mlmLogits := m.mlm.Forward(seq)

	// Flatten sequence and batch so the loss sees [vocab, seq*batch]
	// logits against [seq*batch] labels.
	shape := mlmLogits.Shape()
	vocab, flat := shape[0], shape[1]*shape[2]
	mlmLoss := m.mlmLoss.Forward(mlmLogits.Reshape(vocab, flat), mlmLabels.Reshape(flat))
	nspLoss := m.nspLoss.Forward(nspLogits, nspLabels)

	return &PreTrainingOutput[B]{
		MLMLogits: mlmLogits,
		NSPLogits: nspLogits,
		MLMLoss:   mlmLoss,
		NSPLoss:   nspLoss,
		Loss:      mlmLoss.Add(nspLoss),
	}
}

// Bert returns the underlying encoder stack.
func (m *BertPreTraining[B]) Bert() *Bert[B] {
	return m.bert
}

// SetTraining propagates the mode through the model and heads.
func (m *BertPreTraining[B]) SetTraining(training bool) {
	m.bert.SetTraining(training)
	m.mlm.SetTraining(training)
}

// Parameters returns every trainable parameter of the pretraining model.
func (m *BertPreTraining[B]) Parameters() []*nn.Parameter[B] {
	params := m.bert.Parameters()
	params = append(params, m.pooler.Parameters()...)
	params = append(params, m.nsp.Parameters()...)
	params = append(params, m.mlm.Parameters()...)
	return params
}
