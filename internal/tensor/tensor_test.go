package tensor

import (
	"math"
	"testing"
)

// mockBackend provides just enough of the device surface for creation
// functions; tests of real operations live in the backend packages.
type mockBackend struct{}

func (mockBackend) Add(_, _ *RawTensor) *RawTensor                   { panic("not implemented") }
func (mockBackend) Sub(_, _ *RawTensor) *RawTensor                   { panic("not implemented") }
func (mockBackend) Mul(_, _ *RawTensor) *RawTensor                   { panic("not implemented") }
func (mockBackend) Div(_, _ *RawTensor) *RawTensor                   { panic("not implemented") }
func (mockBackend) AddScalar(_ *RawTensor, _ any) *RawTensor         { panic("not implemented") }
func (mockBackend) SubScalar(_ *RawTensor, _ any) *RawTensor         { panic("not implemented") }
func (mockBackend) MulScalar(_ *RawTensor, _ any) *RawTensor         { panic("not implemented") }
func (mockBackend) DivScalar(_ *RawTensor, _ any) *RawTensor         { panic("not implemented") }
func (mockBackend) MatMul(_, _ *RawTensor) *RawTensor                { panic("not implemented") }
func (mockBackend) BatchMatMul(_, _ *RawTensor) *RawTensor           { panic("not implemented") }
func (mockBackend) Reshape(_ *RawTensor, _ Shape) *RawTensor         { panic("not implemented") }
func (mockBackend) Transpose(_ *RawTensor, _ ...int) *RawTensor      { panic("not implemented") }
func (mockBackend) Exp(_ *RawTensor) *RawTensor                      { panic("not implemented") }
func (mockBackend) Log(_ *RawTensor) *RawTensor                      { panic("not implemented") }
func (mockBackend) Sqrt(_ *RawTensor) *RawTensor                     { panic("not implemented") }
func (mockBackend) Rsqrt(_ *RawTensor) *RawTensor                    { panic("not implemented") }
func (mockBackend) Tanh(_ *RawTensor) *RawTensor                     { panic("not implemented") }
func (mockBackend) GELU(_ *RawTensor) *RawTensor                     { panic("not implemented") }
func (mockBackend) ReLU(_ *RawTensor) *RawTensor                     { panic("not implemented") }
func (mockBackend) Softmax(_ *RawTensor, _ int) *RawTensor           { panic("not implemented") }
func (mockBackend) Sum(_ *RawTensor) *RawTensor                      { panic("not implemented") }
func (mockBackend) SumDim(_ *RawTensor, _ int, _ bool) *RawTensor    { panic("not implemented") }
func (mockBackend) MeanDim(_ *RawTensor, _ int, _ bool) *RawTensor   { panic("not implemented") }
func (mockBackend) Embedding(_, _ *RawTensor) *RawTensor             { panic("not implemented") }
func (mockBackend) IndexSelect(_ *RawTensor, _, _ int) *RawTensor    { panic("not implemented") }
func (mockBackend) Name() string                                     { return "Mock" }
func (mockBackend) Device() Device                                   { return CPU }

var _ Backend = mockBackend{}

func TestFromSlice(t *testing.T) {
	backend := mockBackend{}

	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice error: %v", err)
	}
	if !x.Shape().Equal(Shape{2, 3}) {
		t.Errorf("shape = %v, want [2 3]", x.Shape())
	}
	if x.DType() != Float32 {
		t.Errorf("dtype = %v, want Float32", x.DType())
	}
	if got := x.At(1, 2); got != 6 {
		t.Errorf("At(1,2) = %v, want 6", got)
	}

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 3}, backend)
	if err == nil {
		t.Error("FromSlice with wrong element count should return an error")
	}
}

func TestTensor_SetAndItem(t *testing.T) {
	backend := mockBackend{}

	x := Zeros[float32](Shape{2, 2}, backend)
	x.Set(7, 1, 0)
	if got := x.At(1, 0); got != 7 {
		t.Errorf("At(1,0) = %v, want 7", got)
	}

	scalar := Full[float32](Shape{1}, 3.5, backend)
	if got := scalar.Item(); got != 3.5 {
		t.Errorf("Item() = %v, want 3.5", got)
	}
}

func TestTensor_Clone(t *testing.T) {
	backend := mockBackend{}

	x, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)
	y := x.Clone()
	y.Set(99, 0, 0)
	if x.At(0, 0) != 1 {
		t.Error("Clone should deep-copy the data")
	}
}

func TestRandn_Statistics(t *testing.T) {
	backend := mockBackend{}

	x := Randn[float32](Shape{10000}, backend)
	data := x.Data()

	var sum, sumSq float64
	for _, v := range data {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	n := float64(len(data))
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.1 {
		t.Errorf("Randn mean = %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 0.1 {
		t.Errorf("Randn variance = %v, want ~1", variance)
	}
}

func TestArange(t *testing.T) {
	backend := mockBackend{}

	x := Arange[int32](0, 5, backend)
	if !x.Shape().Equal(Shape{5}) {
		t.Fatalf("Arange shape = %v, want [5]", x.Shape())
	}
	for i, want := range []int32{0, 1, 2, 3, 4} {
		if got := x.Data()[i]; got != want {
			t.Errorf("Arange[%d] = %d, want %d", i, got, want)
		}
	}
}
