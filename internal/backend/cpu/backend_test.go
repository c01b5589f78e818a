package cpu

import (
	"math"
	"testing"

	"github.com/loam-ml/loam/internal/tensor"
)

func rawFrom(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw := tensor.MustNewRaw(shape, tensor.Float32, tensor.CPU)
	copy(raw.AsFloat32(), data)
	return raw
}

func rawInt32(t *testing.T, data []int32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw := tensor.MustNewRaw(shape, tensor.Int32, tensor.CPU)
	copy(raw.AsInt32(), data)
	return raw
}

func assertClose(t *testing.T, got, want []float32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Fatalf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdd_Broadcast(t *testing.T) {
	backend := New()

	// [2,3] + [2,1] broadcasts the column.
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFrom(t, []float32{10, 20}, tensor.Shape{2, 1})

	out := backend.Add(a, b)
	assertClose(t, out.AsFloat32(), []float32{11, 12, 13, 24, 25, 26}, 1e-6)
}

func TestMul_BroadcastLeadingOne(t *testing.T) {
	backend := New()

	// [2,2,2] * [1,2,2] repeats the single slice.
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})
	b := rawFrom(t, []float32{2, 3, 4, 5}, tensor.Shape{1, 2, 2})

	out := backend.Mul(a, b)
	assertClose(t, out.AsFloat32(), []float32{2, 6, 12, 20, 10, 18, 28, 40}, 1e-6)
}

func TestAdd_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFrom(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 4})

	defer func() {
		if recover() == nil {
			t.Error("Add with incompatible shapes should panic")
		}
	}()
	backend.Add(a, b)
}

func TestScalarOps(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4}, tensor.Shape{4})

	assertClose(t, backend.AddScalar(x, float32(1)).AsFloat32(), []float32{2, 3, 4, 5}, 1e-6)
	assertClose(t, backend.MulScalar(x, float32(-2)).AsFloat32(), []float32{-2, -4, -6, -8}, 1e-6)
	assertClose(t, backend.DivScalar(x, float32(2)).AsFloat32(), []float32{0.5, 1, 1.5, 2}, 1e-6)
}

func TestMatMul(t *testing.T) {
	backend := New()

	// [2,3] @ [3,2]
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFrom(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("MatMul shape = %v, want [2 2]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), []float32{58, 64, 139, 154}, 1e-4)
}

func TestBatchMatMul_TrailingBatch(t *testing.T) {
	backend := New()

	// [2,2,2] @ [2,2,2] with batch on the LAST axis. Batch 0 takes the
	// even-offset elements, batch 1 the odd-offset ones.
	//
	// a (batch 0) = [[1,3],[5,7]]   b (batch 0) = [[1,0],[0,1]] (identity)
	// a (batch 1) = [[2,4],[6,8]]   b (batch 1) = [[1,1],[1,1]]
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})
	b := rawFrom(t, []float32{1, 1, 0, 1, 0, 1, 1, 1}, tensor.Shape{2, 2, 2})

	out := backend.BatchMatMul(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("BatchMatMul shape = %v, want [2 2 2]", out.Shape())
	}

	// Batch 0: identity leaves a unchanged -> [[1,3],[5,7]]
	// Batch 1: row sums in every column     -> [[6,6],[14,14]]
	assertClose(t, out.AsFloat32(), []float32{1, 6, 3, 6, 5, 14, 7, 14}, 1e-4)
}

func TestTranspose(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Transpose(x)
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3 2]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), []float32{1, 4, 2, 5, 3, 6}, 1e-6)
}

func TestTranspose_PermutationRoundTrip(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	}, tensor.Shape{2, 3, 4})

	perm := backend.Transpose(x, 1, 2, 0)
	if !perm.Shape().Equal(tensor.Shape{3, 4, 2}) {
		t.Fatalf("Transpose(1,2,0) shape = %v, want [3 4 2]", perm.Shape())
	}

	back := backend.Transpose(perm, 2, 0, 1)
	assertClose(t, back.AsFloat32(), x.AsFloat32(), 0)
}

func TestSoftmax_SumsToOne(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, -2, 3, 0.5, 2, -1, 0, 4, 1, 2, 3, 4}, tensor.Shape{3, 4})

	out := backend.Softmax(x, 0)
	data := out.AsFloat32()
	for col := 0; col < 4; col++ {
		var sum float64
		for row := 0; row < 3; row++ {
			v := data[row*4+col]
			if v < 0 || v > 1 {
				t.Fatalf("softmax value out of range: %v", v)
			}
			sum += float64(v)
		}
		if math.Abs(sum-1) > 1e-5 {
			t.Errorf("column %d sums to %v, want 1", col, sum)
		}
	}
}

func TestSoftmax_LargeValuesStable(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1000, 1001, 1002}, tensor.Shape{3})

	out := backend.Softmax(x, 0)
	var sum float64
	for _, v := range out.AsFloat32() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatal("softmax of large values produced NaN/Inf")
		}
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("softmax sums to %v, want 1", sum)
	}
}

func TestMeanDim(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	// Mean over axis 0 with keepDim.
	out := backend.MeanDim(x, 0, true)
	if !out.Shape().Equal(tensor.Shape{1, 3}) {
		t.Fatalf("MeanDim shape = %v, want [1 3]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), []float32{2.5, 3.5, 4.5}, 1e-6)

	// Mean over axis 1 without keepDim.
	out = backend.MeanDim(x, 1, false)
	if !out.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("MeanDim shape = %v, want [2]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), []float32{2, 5}, 1e-6)
}

func TestSumAndSumDim(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	total := backend.Sum(x)
	assertClose(t, total.AsFloat32(), []float32{21}, 1e-6)

	cols := backend.SumDim(x, 0, false)
	assertClose(t, cols.AsFloat32(), []float32{5, 7, 9}, 1e-6)
}

func TestGELU(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{-2, -1, 0, 1, 2}, tensor.Shape{5})

	out := backend.GELU(x)
	// Exact erf-based GELU values.
	want := []float32{-0.04550026, -0.15865529, 0, 0.84134471, 1.95449974}
	assertClose(t, out.AsFloat32(), want, 1e-5)
}

func TestEmbedding_ColumnLookup(t *testing.T) {
	backend := New()

	// weight [2,3]: embedding 0 = column 0 = (1, 10), etc.
	weight := rawFrom(t, []float32{1, 2, 3, 10, 20, 30}, tensor.Shape{2, 3})
	indices := rawInt32(t, []int32{2, 0, 1, 1}, tensor.Shape{2, 2})

	out := backend.Embedding(weight, indices)
	if !out.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("Embedding shape = %v, want [2 2 2]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), []float32{3, 1, 2, 2, 30, 10, 20, 20}, 1e-6)
}

func TestEmbedding_OutOfRangePanics(t *testing.T) {
	backend := New()
	weight := rawFrom(t, []float32{1, 2, 3, 10, 20, 30}, tensor.Shape{2, 3})
	indices := rawInt32(t, []int32{3}, tensor.Shape{1})

	defer func() {
		if recover() == nil {
			t.Error("Embedding with out-of-range index should panic")
		}
	}()
	backend.Embedding(weight, indices)
}

func TestIndexSelect(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})

	// Select row 1 along axis 0.
	out := backend.IndexSelect(x, 0, 1)
	if !out.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("IndexSelect shape = %v, want [2]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), []float32{3, 4}, 1e-6)

	// Select column 0 along axis 1.
	out = backend.IndexSelect(x, 1, 0)
	assertClose(t, out.AsFloat32(), []float32{1, 3, 5}, 1e-6)
}

func TestNLLLoss(t *testing.T) {
	backend := New()

	// Two classes, two samples, both targeting class 0.
	logits := rawFrom(t, []float32{2, 0, 0, 2}, tensor.Shape{2, 2})
	targets := rawInt32(t, []int32{0, 0}, tensor.Shape{2})

	out := backend.NLLLoss(logits, targets, -1)
	if !out.Shape().Equal(tensor.Shape{1}) {
		t.Fatalf("NLLLoss shape = %v, want [1]", out.Shape())
	}

	// Sample 0: -log(e^2/(e^2+e^0)) = log(1+e^-2) ~= 0.126928
	// Sample 1: -log(e^0/(e^0+e^2)) = log(1+e^2)  ~= 2.126928
	want := float32((math.Log(1+math.Exp(-2)) + math.Log(1+math.Exp(2))) / 2)
	assertClose(t, out.AsFloat32(), []float32{want}, 1e-5)
}

func TestNLLLoss_IgnoreIndex(t *testing.T) {
	backend := New()

	logits := rawFrom(t, []float32{2, 0, 0, 2}, tensor.Shape{2, 2})
	targets := rawInt32(t, []int32{0, -1}, tensor.Shape{2})

	out := backend.NLLLoss(logits, targets, -1)
	want := float32(math.Log(1 + math.Exp(-2)))
	assertClose(t, out.AsFloat32(), []float32{want}, 1e-5)
}

func TestNLLLoss_AllIgnoredIsZero(t *testing.T) {
	backend := New()

	logits := rawFrom(t, []float32{2, 0, 0, 2}, tensor.Shape{2, 2})
	targets := rawInt32(t, []int32{-1, -1}, tensor.Shape{2})

	out := backend.NLLLoss(logits, targets, -1)
	assertClose(t, out.AsFloat32(), []float32{0}, 0)
}

func TestReshape(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Reshape(x, tensor.Shape{3, 2})
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Reshape shape = %v, want [3 2]", out.Shape())
	}
	assertClose(t, out.AsFloat32(), x.AsFloat32(), 0)

	defer func() {
		if recover() == nil {
			t.Error("Reshape with mismatched element count should panic")
		}
	}()
	backend.Reshape(x, tensor.Shape{4, 2})
}
