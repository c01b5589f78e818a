package tensor

// Backend defines the operations a compute backend must implement.
//
// All operations are pure: they allocate their output and never modify
// their inputs. Shape or dtype violations panic, since they indicate a
// caller contract violation rather than a recoverable condition.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations. The scalar must match the tensor's dtype
	// (float32 for Float32 tensors, and so on).
	AddScalar(x *RawTensor, scalar any) *RawTensor
	SubScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// MatMul multiplies two 2D matrices: [M,K] @ [K,N] -> [M,N].
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul performs batched matrix multiplication for 3D tensors
	// with the batch on the trailing axis: [M,K,B] @ [K,N,B] -> [M,N,B].
	// Each batch slice is an independent matrix product.
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor   // exponential
	Log(x *RawTensor) *RawTensor   // natural logarithm
	Sqrt(x *RawTensor) *RawTensor  // square root
	Rsqrt(x *RawTensor) *RawTensor // reciprocal square root (1/sqrt(x))
	Tanh(x *RawTensor) *RawTensor  // hyperbolic tangent
	GELU(x *RawTensor) *RawTensor  // Gaussian error linear unit (exact, erf-based)
	ReLU(x *RawTensor) *RawTensor  // rectified linear unit

	// Softmax along a dimension (negative dims count from the end).
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor                            // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // sum along dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // mean along dimension

	// Embedding performs a column lookup: weight is [embedDim, numEmbeddings],
	// indices is an int32 tensor of any shape [d...], and the result is
	// [embedDim, d...] with result[e, i] = weight[e, indices[i]].
	Embedding(weight, indices *RawTensor) *RawTensor

	// IndexSelect extracts the slice at a fixed index along dim, removing
	// that dimension: [d0,...,d_dim,...,dn] -> [d0,...,dn].
	IndexSelect(x *RawTensor, dim, index int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}

// NLLBackend is an optional capability for backends that provide a fused
// negative-log-likelihood loss over class-first logits.
//
// Logits are [numClasses, n], targets are [n] int32 class indices. Targets
// equal to ignoreIndex are excluded from the mean; if every target is
// ignored the loss is a zero scalar.
type NLLBackend interface {
	NLLLoss(logits, targets *RawTensor, ignoreIndex int) *RawTensor
}
