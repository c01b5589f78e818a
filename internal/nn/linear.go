package nn

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// Linear implements a fully connected layer in feature-first layout.
//
// Performs the transformation: y = W @ x + b
// where:
//   - x is the input tensor with shape [in_features, ...]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [out_features, ...]
//
// Any number of trailing dimensions is allowed; they are flattened for the
// matrix multiply and restored afterwards. For activations shaped
// [embed, seq, batch] this applies the same affine map at every (seq, batch)
// position.
//
// Weights are initialized with Xavier/Glorot uniform, biases with zeros.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features]
	backend     B
}

// NewLinear creates a new Linear layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	weightTensor := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend)
	biasTensor := Zeros(tensor.Shape{outFeatures}, backend)

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weightTensor),
		bias:        NewParameter("bias", biasTensor),
		backend:     backend,
	}
}

// Forward computes y = W @ x + b.
//
// Input shape: [in_features, ...]
// Output shape: [out_features, ...]
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) < 2 {
		panic(fmt.Sprintf("Linear.Forward: expected input with at least 2 dims [features, ...], got shape %v", inputShape))
	}
	if inputShape[0] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[0]))
	}

	// Flatten trailing dims: [in, d1, d2, ...] -> [in, d1*d2*...]
	rest := 1
	for _, d := range inputShape[1:] {
		rest *= d
	}
	x := input
	if len(inputShape) > 2 {
		x = input.Reshape(l.inFeatures, rest)
	}

	// [out, in] @ [in, rest] = [out, rest]
	output := l.weight.Tensor().MatMul(x)

	// Bias broadcasts across the trailing dimension as [out, 1].
	output = output.Add(l.bias.Tensor().Reshape(l.outFeatures, 1))

	if len(inputShape) > 2 {
		outShape := append(tensor.Shape{l.outFeatures}, inputShape[1:]...)
		output = output.Reshape(outShape...)
	}

	return output
}

// Parameters returns the trainable parameters [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
