package ops

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape,
// undoing any broadcasting from the forward pass.
//
// Forward: a[3,1] + b[3,4] -> c[3,4] (a broadcast along dim 1)
// Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	// Broadcasting aligns shapes from the right: first sum away extra
	// leading dimensions, then sum dimensions where the target is 1.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}
	for i, d := range targetShape {
		if d == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// broadcastTo expands a tensor to the target shape by repeating along
// size-1 (or missing leading) dimensions.
func broadcastTo(t *tensor.RawTensor, targetShape tensor.Shape, _ tensor.Backend) *tensor.RawTensor {
	if t.Shape().Equal(targetShape) {
		return t.Clone()
	}

	result := tensor.MustNewRaw(targetShape, t.DType(), t.Device())
	outStrides := targetShape.ComputeStrides()
	srcStrides := broadcastStrides(t.Shape(), targetShape)

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = src[mapIndex(i, outStrides, srcStrides)]
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = src[mapIndex(i, outStrides, srcStrides)]
		}
	default:
		panic(fmt.Sprintf("broadcastTo: unsupported dtype %s", t.DType()))
	}

	return result
}

func broadcastStrides(inShape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	offset := len(outShape) - len(inShape)
	orig := inShape.ComputeStrides()
	for i := range outShape {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			strides[i] = 0
		} else {
			strides[i] = orig[inIdx]
		}
	}
	return strides
}

func mapIndex(outIdx int, outStrides, srcStrides []int) int {
	flat := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flat += coord * srcStrides[i]
	}
	return flat
}

// unsqueezeDim reshapes grad to carry a size-1 dimension at dim, matching
// the rank of the pre-reduction shape.
func unsqueezeDim(grad *tensor.RawTensor, dim int, preShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	d := dim
	if d < 0 {
		d += len(preShape)
	}
	shape := preShape.Clone()
	shape[d] = 1
	return backend.Reshape(grad, shape)
}

// negateGradient returns -grad.
func negateGradient(grad *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	switch grad.DType() {
	case tensor.Float32:
		return backend.MulScalar(grad, float32(-1))
	case tensor.Float64:
		return backend.MulScalar(grad, float64(-1))
	default:
		panic(fmt.Sprintf("negateGradient: unsupported dtype %s", grad.DType()))
	}
}

// onesLike returns a tensor of ones with the same shape and dtype as t.
func onesLike(t *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(t.Shape(), t.DType(), t.Device())
	switch t.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(fmt.Sprintf("onesLike: unsupported dtype %s", t.DType()))
	}
	return result
}
