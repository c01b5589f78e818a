package cpu

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// BatchMatMul multiplies two 3D tensors with the batch on the trailing
// axis: [M,K,B] @ [K,N,B] -> [M,N,B].
//
// With this layout a single batch slice has element stride B, so BLAS GEMM
// does not apply; instead the kernel keeps the batch axis innermost, where
// memory is contiguous:
//
//	out[m,n,:] += a[m,k,:] * b[k,n,:]
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 3 || len(bShape) != 3 {
		panic(fmt.Sprintf("batch_matmul: expected 3D tensors, got %v and %v", aShape, bShape))
	}

	m, k, batch := aShape[0], aShape[1], aShape[2]
	k2, n, batch2 := bShape[0], bShape[1], bShape[2]
	if k != k2 {
		panic(fmt.Sprintf("batch_matmul: inner dimensions mismatch: %v @ %v", aShape, bShape))
	}
	if batch != batch2 {
		panic(fmt.Sprintf("batch_matmul: batch dimensions mismatch: %v @ %v", aShape, bShape))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n, batch}, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		batchMatMulFloat32(a.AsFloat32(), b.AsFloat32(), result.AsFloat32(), m, k, n, batch)
	case tensor.Float64:
		batchMatMulFloat64(a.AsFloat64(), b.AsFloat64(), result.AsFloat64(), m, k, n, batch)
	default:
		panic(fmt.Sprintf("batch_matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

func batchMatMulFloat32(a, b, out []float32, m, k, n, batch int) {
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			aRow := a[(i*k+p)*batch : (i*k+p+1)*batch]
			for j := 0; j < n; j++ {
				bRow := b[(p*n+j)*batch : (p*n+j+1)*batch]
				outRow := out[(i*n+j)*batch : (i*n+j+1)*batch]
				for c := range outRow {
					outRow[c] += aRow[c] * bRow[c]
				}
			}
		}
	}
}

func batchMatMulFloat64(a, b, out []float64, m, k, n, batch int) {
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			aRow := a[(i*k+p)*batch : (i*k+p+1)*batch]
			for j := 0; j < n; j++ {
				bRow := b[(p*n+j)*batch : (p*n+j+1)*batch]
				outRow := out[(i*n+j)*batch : (i*n+j+1)*batch]
				for c := range outRow {
					outRow[c] += aRow[c] * bRow[c]
				}
			}
		}
	}
}
