package ops

import "github.com/loam-ml/loam/internal/tensor"

// SoftmaxOp represents softmax along an arbitrary dimension.
//
// With y = softmax(x, dim) and g the output gradient, the Jacobian
// contracts to
//
//	grad_x = y * (g - sum(g * y, dim))
//
// where the sum runs along the softmax dimension.
type SoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor // cached softmax for backward
	dim    int
}

// NewSoftmaxOp creates a new SoftmaxOp.
func NewSoftmaxOp(input, output *tensor.RawTensor, dim int) *SoftmaxOp {
	d := dim
	if d < 0 {
		d += len(input.Shape())
	}
	return &SoftmaxOp{input: input, output: output, dim: d}
}

// Backward computes grad_x = y * (g - sum(g*y, dim)).
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	gy := backend.Mul(outputGrad, y)
	dot := backend.SumDim(gy, op.dim, true)
	grad := backend.Mul(y, backend.Sub(outputGrad, dot))
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors.
func (op *SoftmaxOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *SoftmaxOp) Output() *tensor.RawTensor {
	return op.output
}
