package ops

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// EmbeddingOp represents a column lookup into an [embedDim, numEmbeddings]
// table: output[e, i] = weight[e, indices[i]].
//
// Backward is a scatter-add over columns: each output column's gradient
// accumulates into the weight column its id selected. Ids that appear more
// than once sum their gradients. Indices receive no gradient.
type EmbeddingOp struct {
	weight  *tensor.RawTensor // [embedDim, numEmbeddings]
	indices *tensor.RawTensor // int32, any shape
	output  *tensor.RawTensor // [embedDim, indices...]
}

// NewEmbeddingOp creates a new EmbeddingOp.
func NewEmbeddingOp(weight, indices, output *tensor.RawTensor) *EmbeddingOp {
	return &EmbeddingOp{
		weight:  weight,
		indices: indices,
		output:  output,
	}
}

// Inputs returns the tensors receiving gradients (only the weight).
func (op *EmbeddingOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.weight}
}

// Output returns the output tensor.
func (op *EmbeddingOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward scatter-adds output-column gradients into weight columns.
func (op *EmbeddingOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	wShape := op.weight.Shape()
	embedDim, numEmbeddings := wShape[0], wShape[1]

	gradWeight := tensor.MustNewRaw(wShape, tensor.Float32, op.weight.Device())
	gradWeightData := gradWeight.AsFloat32()
	gradOutputData := outputGrad.AsFloat32()

	indicesData := op.indices.AsInt32()
	numIndices := op.indices.NumElements()

	for i, id := range indicesData {
		if id < 0 || int(id) >= numEmbeddings {
			panic(fmt.Sprintf("embedding backward: index %d out of range [0, %d)", id, numEmbeddings))
		}
		for e := 0; e < embedDim; e++ {
			gradWeightData[e*numEmbeddings+int(id)] += gradOutputData[e*numIndices+i]
		}
	}

	return []*tensor.RawTensor{gradWeight}
}
