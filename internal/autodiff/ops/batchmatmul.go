package ops

import "github.com/loam-ml/loam/internal/tensor"

// BatchMatMulOp represents batched matrix multiplication with the batch on
// the trailing axis: output[:,:,i] = a[:,:,i] @ b[:,:,i].
//
// Backward mirrors the 2D case per batch slice; transposing the first two
// axes (permutation 1,0,2) plays the role of the matrix transpose:
//
//	grad_a = outputGrad @@ b^T   = bmm(outputGrad, transpose(b, 1, 0, 2))
//	grad_b = a^T @@ outputGrad   = bmm(transpose(a, 1, 0, 2), outputGrad)
type BatchMatMulOp struct {
	inputs []*tensor.RawTensor // [a, b]
	output *tensor.RawTensor
}

// NewBatchMatMulOp creates a new BatchMatMulOp.
func NewBatchMatMulOp(a, b, output *tensor.RawTensor) *BatchMatMulOp {
	return &BatchMatMulOp{
		inputs: []*tensor.RawTensor{a, b},
		output: output,
	}
}

// Backward computes input gradients for batched matrix multiplication.
func (op *BatchMatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	gradA := backend.BatchMatMul(outputGrad, backend.Transpose(b, 1, 0, 2))
	gradB := backend.BatchMatMul(backend.Transpose(a, 1, 0, 2), outputGrad)

	return []*tensor.RawTensor{gradA, gradB}
}

// Inputs returns the input tensors [a, b].
func (op *BatchMatMulOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor.
func (op *BatchMatMulOp) Output() *tensor.RawTensor {
	return op.output
}
