package ops

import (
	"math"

	"github.com/loam-ml/loam/internal/tensor"
)

// NLLOp represents the fused negative-log-likelihood loss over class-first
// logits.
//
// Forward (per non-ignored sample i, a column of logits):
//
//	loss_i = log_sum_exp(logits[:, i]) - logits[target_i, i]
//	loss   = mean over non-ignored samples (0 if all are ignored)
//
// Backward, the classic fused softmax/NLL gradient with ignore filtering:
//
//	grad[c, i] = gradScale * (softmax(logits[:, i])[c] - onehot_i[c]) / count
//
// for non-ignored samples, and exactly zero for ignored ones. Targets
// receive no gradient.
type NLLOp struct {
	logits      *tensor.RawTensor // [numClasses, n]
	targets     *tensor.RawTensor // [n] int32
	output      *tensor.RawTensor // [1]
	ignoreIndex int
}

// NewNLLOp creates a new NLLOp.
func NewNLLOp(logits, targets, output *tensor.RawTensor, ignoreIndex int) *NLLOp {
	return &NLLOp{
		logits:      logits,
		targets:     targets,
		output:      output,
		ignoreIndex: ignoreIndex,
	}
}

// Inputs returns the tensors receiving gradients (only the logits).
func (op *NLLOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

// Output returns the scalar loss tensor.
func (op *NLLOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the fused gradient with respect to the logits.
func (op *NLLOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	lShape := op.logits.Shape()
	numClasses, n := lShape[0], lShape[1]

	logitsData := op.logits.AsFloat32()
	targetsData := op.targets.AsInt32()
	gradScale := outputGrad.AsFloat32()[0]

	grad := tensor.MustNewRaw(lShape, tensor.Float32, op.logits.Device())
	gradData := grad.AsFloat32()

	count := 0
	for i := 0; i < n; i++ {
		if int(targetsData[i]) != op.ignoreIndex {
			count++
		}
	}
	if count == 0 {
		return []*tensor.RawTensor{grad}
	}

	probs := make([]float64, numClasses)
	for i := 0; i < n; i++ {
		target := int(targetsData[i])
		if target == op.ignoreIndex {
			continue
		}

		// Softmax of column i (element stride n), max-shifted.
		maxVal := logitsData[i]
		for c := 1; c < numClasses; c++ {
			if v := logitsData[c*n+i]; v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for c := 0; c < numClasses; c++ {
			probs[c] = math.Exp(float64(logitsData[c*n+i] - maxVal))
			sumExp += probs[c]
		}

		for c := 0; c < numClasses; c++ {
			g := probs[c] / sumExp
			if c == target {
				g -= 1.0
			}
			gradData[c*n+i] = gradScale * float32(g) / float32(count)
		}
	}

	return []*tensor.RawTensor{grad}
}
