package cpu

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// Embedding performs a column lookup: weight is [embedDim, numEmbeddings]
// and indices is an int32 tensor of any shape [d...]. The result is
// [embedDim, d...] with result[e, i] = weight[e, indices[i]].
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	wShape := weight.Shape()
	if len(wShape) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D [embedDim, numEmbeddings], got %v", wShape))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	embedDim, numEmbeddings := wShape[0], wShape[1]
	outShape := append(tensor.Shape{embedDim}, indices.Shape()...)
	result := tensor.MustNewRaw(outShape, weight.DType(), cpu.device)

	idx := indices.AsInt32()
	numIdx := indices.NumElements()

	switch weight.DType() {
	case tensor.Float32:
		w, out := weight.AsFloat32(), result.AsFloat32()
		for i, id := range idx {
			if id < 0 || int(id) >= numEmbeddings {
				panic(fmt.Sprintf("embedding: index %d out of range [0, %d)", id, numEmbeddings))
			}
			for e := 0; e < embedDim; e++ {
				out[e*numIdx+i] = w[e*numEmbeddings+int(id)]
			}
		}
	case tensor.Float64:
		w, out := weight.AsFloat64(), result.AsFloat64()
		for i, id := range idx {
			if id < 0 || int(id) >= numEmbeddings {
				panic(fmt.Sprintf("embedding: index %d out of range [0, %d)", id, numEmbeddings))
			}
			for e := 0; e < embedDim; e++ {
				out[e*numIdx+i] = w[e*numEmbeddings+int(id)]
			}
		}
	default:
		panic(fmt.Sprintf("embedding: unsupported dtype %s", weight.DType()))
	}

	return result
}

// IndexSelect extracts the slice at a fixed index along dim, removing that
// dimension: [d0,...,d_dim,...,dn] -> [d0,...,dn].
func (cpu *CPUBackend) IndexSelect(t *tensor.RawTensor, dim, index int) *tensor.RawTensor {
	d := normalizeDim("index_select", dim, len(t.Shape()))
	outer, n, inner := dimSpan(t.Shape(), d)
	if index < 0 || index >= n {
		panic(fmt.Sprintf("index_select: index %d out of range [0, %d)", index, n))
	}

	result := tensor.MustNewRaw(reducedShape(t.Shape(), d, false), t.DType(), cpu.device)

	elemSize := t.DType().Size()
	src, dst := t.Data(), result.Data()
	for o := 0; o < outer; o++ {
		srcOff := (o*n + index) * inner * elemSize
		dstOff := o * inner * elemSize
		copy(dst[dstOff:dstOff+inner*elemSize], src[srcOff:srcOff+inner*elemSize])
	}

	return result
}
