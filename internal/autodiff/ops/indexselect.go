package ops

import "github.com/loam-ml/loam/internal/tensor"

// IndexSelectOp extracts the slice at a fixed index along dim, removing
// that dimension. Backward scatters the output gradient into a zero tensor
// of the input's shape at the selected index.
type IndexSelectOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	dim    int
	index  int
}

// NewIndexSelectOp creates a new IndexSelectOp.
func NewIndexSelectOp(input, output *tensor.RawTensor, dim, index int) *IndexSelectOp {
	d := dim
	if d < 0 {
		d += len(input.Shape())
	}
	return &IndexSelectOp{input: input, output: output, dim: d, index: index}
}

// Backward scatters the output gradient into the selected slice.
func (op *IndexSelectOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	grad := tensor.MustNewRaw(shape, op.input.DType(), op.input.Device())

	outer, inner := 1, 1
	for i := 0; i < op.dim; i++ {
		outer *= shape[i]
	}
	n := shape[op.dim]
	for i := op.dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	elemSize := op.input.DType().Size()
	src, dst := outputGrad.Data(), grad.Data()
	for o := 0; o < outer; o++ {
		srcOff := o * inner * elemSize
		dstOff := (o*n + op.index) * inner * elemSize
		copy(dst[dstOff:dstOff+inner*elemSize], src[srcOff:srcOff+inner*elemSize])
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors.
func (op *IndexSelectOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *IndexSelectOp) Output() *tensor.RawTensor {
	return op.output
}
