package cpu

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// binaryOp applies an element-wise binary function with broadcasting.
// Equal shapes take the flat fast path; otherwise both operands are walked
// with broadcast-adjusted strides.
func (cpu *CPUBackend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := tensor.MustNewRaw(outShape, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		out, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		if !needsBroadcast {
			for i := range out {
				out[i] = f32(av[i], bv[i])
			}
			break
		}
		outStrides := outShape.ComputeStrides()
		aStrides := computeBroadcastStridesForShape(a.Shape(), outShape)
		bStrides := computeBroadcastStridesForShape(b.Shape(), outShape)
		for i := range out {
			out[i] = f32(
				av[computeFlatIndex(i, outStrides, aStrides)],
				bv[computeFlatIndex(i, outStrides, bStrides)],
			)
		}

	case tensor.Float64:
		out, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		if !needsBroadcast {
			for i := range out {
				out[i] = f64(av[i], bv[i])
			}
			break
		}
		outStrides := outShape.ComputeStrides()
		aStrides := computeBroadcastStridesForShape(a.Shape(), outShape)
		bStrides := computeBroadcastStridesForShape(b.Shape(), outShape)
		for i := range out {
			out[i] = f64(
				av[computeFlatIndex(i, outStrides, aStrides)],
				bv[computeFlatIndex(i, outStrides, bStrides)],
			)
		}

	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// computeBroadcastStridesForShape computes strides for broadcasting inShape
// to outShape: dimensions of size 1 (or padded on the left) get stride 0.
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0 // padded dimension
		case inShape[inIdx] == 1:
			strides[i] = 0 // broadcast dimension
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex maps a flat output index to a flat source index given the
// output strides and the (broadcast-adjusted) source strides.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}
