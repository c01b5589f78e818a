package ops

import "github.com/loam-ml/loam/internal/tensor"

// ExpOp: output = exp(input); grad = outputGrad * output.
type ExpOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{input: input, output: output}
}

// Backward computes grad = outputGrad * exp(input), reusing the cached output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// Inputs returns the input tensors.
func (op *ExpOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *ExpOp) Output() *tensor.RawTensor {
	return op.output
}

// LogOp: output = log(input); grad = outputGrad / input.
type LogOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{input: input, output: output}
}

// Backward computes grad = outputGrad / input.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// Inputs returns the input tensors.
func (op *LogOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *LogOp) Output() *tensor.RawTensor {
	return op.output
}

// SqrtOp: output = sqrt(input); grad = outputGrad * 0.5 / output.
type SqrtOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(input, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{input: input, output: output}
}

// Backward computes grad = outputGrad / (2 * sqrt(input)).
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := backend.Div(outputGrad, op.output)
	switch grad.DType() {
	case tensor.Float64:
		grad = backend.MulScalar(grad, float64(0.5))
	default:
		grad = backend.MulScalar(grad, float32(0.5))
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors.
func (op *SqrtOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *SqrtOp) Output() *tensor.RawTensor {
	return op.output
}

// RsqrtOp: output = 1/sqrt(input).
//
// With y = x^(-1/2), dy/dx = -x^(-3/2)/2 = -y^3/2, so
// grad = outputGrad * (-0.5) * output^3.
type RsqrtOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewRsqrtOp creates a new RsqrtOp.
func NewRsqrtOp(input, output *tensor.RawTensor) *RsqrtOp {
	return &RsqrtOp{input: input, output: output}
}

// Backward computes grad = outputGrad * (-0.5) * output^3.
func (op *RsqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	yCubed := backend.Mul(backend.Mul(y, y), y)
	grad := backend.Mul(outputGrad, yCubed)
	switch grad.DType() {
	case tensor.Float64:
		grad = backend.MulScalar(grad, float64(-0.5))
	default:
		grad = backend.MulScalar(grad, float32(-0.5))
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors.
func (op *RsqrtOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *RsqrtOp) Output() *tensor.RawTensor {
	return op.output
}
