package cpu

import (
	"fmt"
	"math"

	"github.com/loam-ml/loam/internal/tensor"
)

// unaryOp applies an element-wise function (defined on float64) to a float
// tensor.
func (cpu *CPUBackend) unaryOp(name string, t *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(t.Shape(), t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = float32(f(float64(src[i])))
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = f(src[i])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, t.DType()))
	}

	return result
}

// Exp computes the element-wise exponential.
func (cpu *CPUBackend) Exp(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("exp", t, math.Exp)
}

// Log computes the element-wise natural logarithm.
func (cpu *CPUBackend) Log(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("log", t, math.Log)
}

// Sqrt computes the element-wise square root.
func (cpu *CPUBackend) Sqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sqrt", t, math.Sqrt)
}

// Rsqrt computes the element-wise reciprocal square root.
func (cpu *CPUBackend) Rsqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("rsqrt", t, func(x float64) float64 { return 1.0 / math.Sqrt(x) })
}

// Tanh computes the element-wise hyperbolic tangent.
func (cpu *CPUBackend) Tanh(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("tanh", t, math.Tanh)
}

// GELU computes the exact Gaussian error linear unit:
// gelu(x) = x * Phi(x), with Phi the standard normal CDF.
func (cpu *CPUBackend) GELU(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("gelu", t, geluFloat64)
}

func geluFloat64(x float64) float64 {
	return x * 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// ReLU computes the element-wise rectified linear unit.
func (cpu *CPUBackend) ReLU(t *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("relu", t, func(x float64) float64 { return math.Max(x, 0) })
}
