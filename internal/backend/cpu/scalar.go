package cpu

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// scalarOp applies an element-wise op against a scalar. The scalar's Go
// type must match the tensor's dtype.
func (cpu *CPUBackend) scalarOp(
	name string,
	t *tensor.RawTensor,
	scalar any,
	f32 func(x, s float32) float32,
	f64 func(x, s float64) float64,
) *tensor.RawTensor {
	result := tensor.MustNewRaw(t.Shape(), t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		s, ok := scalar.(float32)
		if !ok {
			panic(fmt.Sprintf("%s: scalar must be float32 for a float32 tensor, got %T", name, scalar))
		}
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = f32(src[i], s)
		}

	case tensor.Float64:
		s, ok := scalar.(float64)
		if !ok {
			panic(fmt.Sprintf("%s: scalar must be float64 for a float64 tensor, got %T", name, scalar))
		}
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = f64(src[i], s)
		}

	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, t.DType()))
	}

	return result
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("add_scalar", t, scalar,
		func(x, s float32) float32 { return x + s },
		func(x, s float64) float64 { return x + s })
}

// SubScalar subtracts a scalar from every element.
func (cpu *CPUBackend) SubScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("sub_scalar", t, scalar,
		func(x, s float32) float32 { return x - s },
		func(x, s float64) float64 { return x - s })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("mul_scalar", t, scalar,
		func(x, s float32) float32 { return x * s },
		func(x, s float64) float64 { return x * s })
}

// DivScalar divides every element by a scalar.
func (cpu *CPUBackend) DivScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("div_scalar", t, scalar,
		func(x, s float32) float32 { return x / s },
		func(x, s float64) float64 { return x / s })
}
