package nn

import (
	"fmt"
	"math/rand"

	"github.com/loam-ml/loam/internal/tensor"
)

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// The table is stored feature-first: Weight has shape [EmbedDim, NumEmbed]
// and a lookup selects COLUMNS, so index tensors of shape [seq, batch]
// produce embeddings of shape [EmbedDim, seq, batch].
//
// Gradients scatter-add into the selected columns during backward.
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B] // embedding matrix [EmbedDim, NumEmbed]
	NumEmbed int           // number of embeddings (vocabulary size)
	EmbedDim int           // embedding dimension
}

// NewEmbedding creates a new Embedding layer with weights drawn from
// N(0, 1).
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	weightData := make([]float32, embeddingDim*numEmbeddings)
	//nolint:gosec // math/rand is appropriate for weight initialization
	for i := range weightData {
		weightData[i] = float32(rand.NormFloat64())
	}

	weight, err := tensor.FromSlice[float32, B](weightData, tensor.Shape{embeddingDim, numEmbeddings}, backend)
	if err != nil {
		panic(fmt.Sprintf("failed to create embedding weight: %v", err))
	}

	return &Embedding[B]{
		Weight:   NewParameter[B]("embedding.weight", weight),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
	}
}

// NewEmbeddingWithWeight creates an Embedding layer from a pre-initialized
// [embedDim, numEmbeddings] weight tensor.
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B]) *Embedding[B] {
	shape := weight.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("embedding weight must be 2D, got shape %v", shape))
	}

	return &Embedding[B]{
		Weight:   NewParameter[B]("embedding.weight", weight),
		NumEmbed: shape[1],
		EmbedDim: shape[0],
	}
}

// Forward performs the embedding lookup.
//
// indices may have any shape; the output prepends the embedding dimension:
// [...] -> [EmbedDim, ...].
//
// Panics if any index is outside [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return e.Weight.Tensor().Embedding(indices)
}

// Parameters returns the trainable parameters.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
