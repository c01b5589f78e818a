package ops

import (
	"fmt"
	"math"

	"github.com/loam-ml/loam/internal/tensor"
)

// TanhOp represents the hyperbolic tangent activation.
//
// d(tanh(x))/dx = 1 - tanh^2(x); the cached output makes the backward pass
// a couple of element-wise ops.
type TanhOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{input: input, output: output}
}

// Backward computes grad = outputGrad * (1 - output^2).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	outputSquared := backend.Mul(op.output, op.output)
	derivative := backend.Sub(onesLike(op.output), outputSquared)
	return []*tensor.RawTensor{backend.Mul(outputGrad, derivative)}
}

// Inputs returns the input tensors.
func (op *TanhOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *TanhOp) Output() *tensor.RawTensor {
	return op.output
}

// ReLUOp represents the rectified linear unit.
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

// Backward passes the gradient where the input was positive and zeroes it
// elsewhere.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustNewRaw(op.input.Shape(), op.input.DType(), op.input.Device())

	switch op.input.DType() {
	case tensor.Float32:
		in, g, out := op.input.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for i := range out {
			if in[i] > 0 {
				out[i] = g[i]
			}
		}
	case tensor.Float64:
		in, g, out := op.input.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for i := range out {
			if in[i] > 0 {
				out[i] = g[i]
			}
		}
	default:
		panic(fmt.Sprintf("ReLUOp: unsupported dtype %s", op.input.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors.
func (op *ReLUOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *ReLUOp) Output() *tensor.RawTensor {
	return op.output
}

// GELUOp represents the exact Gaussian error linear unit: gelu(x) = x * Phi(x).
//
// d(gelu(x))/dx = Phi(x) + x * phi(x), where Phi is the standard normal CDF
// and phi its density.
type GELUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewGELUOp creates a new GELUOp.
func NewGELUOp(input, output *tensor.RawTensor) *GELUOp {
	return &GELUOp{input: input, output: output}
}

// Backward computes grad = outputGrad * (Phi(x) + x*phi(x)).
func (op *GELUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustNewRaw(op.input.Shape(), op.input.DType(), op.input.Device())

	switch op.input.DType() {
	case tensor.Float32:
		in, g, out := op.input.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for i := range out {
			out[i] = g[i] * float32(geluDerivative(float64(in[i])))
		}
	case tensor.Float64:
		in, g, out := op.input.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for i := range out {
			out[i] = g[i] * geluDerivative(in[i])
		}
	default:
		panic(fmt.Sprintf("GELUOp: unsupported dtype %s", op.input.DType()))
	}

	return []*tensor.RawTensor{grad}
}

func geluDerivative(x float64) float64 {
	cdf := 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
	pdf := math.Exp(-0.5*x*x) / math.Sqrt(2.0*math.Pi)
	return cdf + x*pdf
}

// Inputs returns the input tensors.
func (op *GELUOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *GELUOp) Output() *tensor.RawTensor {
	return op.output
}
