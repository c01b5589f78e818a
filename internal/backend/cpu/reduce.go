package cpu

import (
	"fmt"
	"math"

	"github.com/loam-ml/loam/internal/tensor"
)

// normalizeDim resolves negative dims and bounds-checks.
func normalizeDim(name string, dim, ndim int) int {
	d := dim
	if d < 0 {
		d += ndim
	}
	if d < 0 || d >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for %dD tensor", name, dim, ndim))
	}
	return d
}

// dimSpan describes iteration along one axis: lanes of length n with
// element stride `inner`, repeated `outer` times.
func dimSpan(shape tensor.Shape, dim int) (outer, n, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	n = shape[dim]
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, n, inner
}

// reducedShape drops or keeps (as size 1) the reduced dimension.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}

// Sum reduces the whole tensor to a single-element total.
func (cpu *CPUBackend) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{1}, t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		var total float32
		for _, v := range t.AsFloat32() {
			total += v
		}
		result.AsFloat32()[0] = total
	case tensor.Float64:
		var total float64
		for _, v := range t.AsFloat64() {
			total += v
		}
		result.AsFloat64()[0] = total
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", t.DType()))
	}

	return result
}

// SumDim sums along a dimension.
func (cpu *CPUBackend) SumDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sum_dim", t, dim, keepDim, false)
}

// MeanDim averages along a dimension.
func (cpu *CPUBackend) MeanDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("mean_dim", t, dim, keepDim, true)
}

func (cpu *CPUBackend) reduceDim(name string, t *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	d := normalizeDim(name, dim, len(t.Shape()))
	outer, n, inner := dimSpan(t.Shape(), d)

	result := tensor.MustNewRaw(reducedShape(t.Shape(), d, keepDim), t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				base := o*n*inner + i
				var total float32
				for j := 0; j < n; j++ {
					total += src[base+j*inner]
				}
				if mean {
					total /= float32(n)
				}
				dst[o*inner+i] = total
			}
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				base := o*n*inner + i
				var total float64
				for j := 0; j < n; j++ {
					total += src[base+j*inner]
				}
				if mean {
					total /= float64(n)
				}
				dst[o*inner+i] = total
			}
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, t.DType()))
	}

	return result
}

// Softmax computes softmax along the given dimension with max-shifting for
// numerical stability.
func (cpu *CPUBackend) Softmax(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	d := normalizeDim("softmax", dim, len(t.Shape()))
	outer, n, inner := dimSpan(t.Shape(), d)

	result := tensor.MustNewRaw(t.Shape(), t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		softmaxLanesFloat32(t.AsFloat32(), result.AsFloat32(), outer, n, inner)
	case tensor.Float64:
		softmaxLanesFloat64(t.AsFloat64(), result.AsFloat64(), outer, n, inner)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", t.DType()))
	}

	return result
}

func softmaxLanesFloat32(src, dst []float32, outer, n, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*n*inner + i

			maxVal := src[base]
			for j := 1; j < n; j++ {
				if v := src[base+j*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sumExp float32
			for j := 0; j < n; j++ {
				idx := base + j*inner
				dst[idx] = float32(math.Exp(float64(src[idx] - maxVal)))
				sumExp += dst[idx]
			}

			for j := 0; j < n; j++ {
				dst[base+j*inner] /= sumExp
			}
		}
	}
}

func softmaxLanesFloat64(src, dst []float64, outer, n, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*n*inner + i

			maxVal := src[base]
			for j := 1; j < n; j++ {
				if v := src[base+j*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sumExp float64
			for j := 0; j < n; j++ {
				idx := base + j*inner
				dst[idx] = math.Exp(src[idx] - maxVal)
				sumExp += dst[idx]
			}

			for j := 0; j < n; j++ {
				dst[base+j*inner] /= sumExp
			}
		}
	}
}
