package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/loam-ml/loam/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [M,K] @ [K,N] -> [M,N].
//
// Float32 matrices go through gonum's BLAS Sgemm (row-major); float64 falls
// back to a cache-friendly loop.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}

	m, k := aShape[0], aShape[1]
	k2, n := bShape[0], bShape[1]
	if k != k2 {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", aShape, bShape))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		blas32.Implementation().Sgemm(blas.NoTrans, blas.NoTrans,
			m, n, k,
			1, a.AsFloat32(), k,
			b.AsFloat32(), n,
			0, result.AsFloat32(), n)

	case tensor.Float64:
		matmulFloat64(a.AsFloat64(), b.AsFloat64(), result.AsFloat64(), m, k, n)

	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// matmulFloat64 is an ikj-ordered triple loop, keeping the innermost access
// contiguous in both b and out.
func matmulFloat64(a, b, out []float64, m, k, n int) {
	for i := 0; i < m; i++ {
		outRow := out[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := 0; j < n; j++ {
				outRow[j] += av * bRow[j]
			}
		}
	}
}
