package autodiff_test

import (
	"math"
	"testing"

	"github.com/loam-ml/loam/internal/autodiff"
	"github.com/loam-ml/loam/internal/backend/cpu"
	"github.com/loam-ml/loam/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() Backend {
	return autodiff.New(cpu.New())
}

func fromSlice(t *testing.T, backend Backend, data []float32, shape tensor.Shape) *tensor.Tensor[float32, Backend] {
	t.Helper()
	x, err := tensor.FromSlice[float32, Backend](data, shape, backend)
	if err != nil {
		t.Fatalf("FromSlice error: %v", err)
	}
	return x
}

func assertGradClose(t *testing.T, grads map[*tensor.RawTensor]*tensor.RawTensor, of *tensor.RawTensor, want []float32, tol float64) {
	t.Helper()
	grad, ok := grads[of]
	if !ok {
		t.Fatal("no gradient recorded for tensor")
	}
	got := grad.AsFloat32()
	if len(got) != len(want) {
		t.Fatalf("gradient length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Fatalf("gradient element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAutodiffBackend_Name(t *testing.T) {
	backend := newBackend()
	if got := backend.Name(); got != "Autodiff(CPU)" {
		t.Errorf("Name() = %s, want Autodiff(CPU)", got)
	}
}

func TestTape_Recording(t *testing.T) {
	backend := newBackend()
	tape := backend.Tape()

	if tape.IsRecording() {
		t.Error("tape should not be recording initially")
	}
	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("tape should be recording after StartRecording()")
	}

	x := fromSlice(t, backend, []float32{1, 2}, tensor.Shape{2})
	_ = x.Add(x)
	if tape.NumOps() != 1 {
		t.Errorf("NumOps() = %d, want 1", tape.NumOps())
	}

	tape.StopRecording()
	_ = x.Add(x)
	if tape.NumOps() != 1 {
		t.Errorf("ops recorded while stopped: NumOps() = %d, want 1", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("NumOps() after Clear = %d, want 0", tape.NumOps())
	}
}

func TestBackward_Square(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{2, -3}, tensor.Shape{2})
	y := x.Mul(x)

	grads := autodiff.Backward(y, backend)

	// d(x*x)/dx = 2x, accumulated from both operands of Mul.
	assertGradClose(t, grads, x.Raw(), []float32{4, -6}, 1e-6)
}

func TestBackward_AddBroadcastReduces(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, backend, []float32{10, 20}, tensor.Shape{2, 1})
	y := x.Add(b)

	grads := autodiff.Backward(y, backend)

	assertGradClose(t, grads, x.Raw(), []float32{1, 1, 1, 1, 1, 1}, 1e-6)
	// The broadcast [2,1] operand sums its gradient over the expanded dim.
	assertGradClose(t, grads, b.Raw(), []float32{3, 3}, 1e-6)
}

func TestBackward_MatMul(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	a := fromSlice(t, backend, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, backend, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})
	y := a.MatMul(b)

	grads := autodiff.Backward(y, backend)

	// With dL/dy = ones: dL/da = ones @ b^T, dL/db = a^T @ ones.
	assertGradClose(t, grads, a.Raw(), []float32{11, 15, 11, 15}, 1e-4)
	assertGradClose(t, grads, b.Raw(), []float32{4, 4, 6, 6}, 1e-4)
}

func TestBackward_ReshapeTransposeRoundTrip(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := x.Reshape(3, 2).Transpose(1, 0).MulScalar(2)

	grads := autodiff.Backward(y, backend)

	// The reshape/transpose chain routes each gradient element back to its
	// source position; scaling doubles it.
	assertGradClose(t, grads, x.Raw(), []float32{2, 2, 2, 2, 2, 2}, 1e-6)
}

func TestBackward_Tanh(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{0, 1}, tensor.Shape{2})
	y := x.Tanh()

	grads := autodiff.Backward(y, backend)

	// d tanh/dx = 1 - tanh^2.
	th := math.Tanh(1)
	assertGradClose(t, grads, x.Raw(), []float32{1, float32(1 - th*th)}, 1e-5)
}

func TestBackward_Softmax(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{1, 2, 3}, tensor.Shape{3})
	y := x.Softmax(0)

	grads := autodiff.Backward(y, backend)

	// With dL/dy = ones the softmax Jacobian collapses to zero: the
	// outputs always sum to 1 so a uniform upstream gradient has no
	// effect on the inputs.
	assertGradClose(t, grads, x.Raw(), []float32{0, 0, 0}, 1e-5)
}

func TestBackward_MeanDim(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := x.MeanDim(0, true)

	grads := autodiff.Backward(y, backend)

	// Each input contributes 1/2 to its column mean.
	assertGradClose(t, grads, x.Raw(), []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 1e-6)
}

func TestBackward_EmbeddingScatter(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	weight := fromSlice(t, backend, []float32{1, 2, 3, 10, 20, 30}, tensor.Shape{2, 3})
	indices, err := tensor.FromSlice[int32, Backend]([]int32{1, 1, 2}, tensor.Shape{3}, backend)
	if err != nil {
		t.Fatal(err)
	}

	y := weight.Embedding(indices)
	grads := autodiff.Backward(y, backend)

	// Column 1 is selected twice, column 2 once, column 0 never.
	assertGradClose(t, grads, weight.Raw(), []float32{0, 2, 1, 0, 2, 1}, 1e-6)
}

func TestBackward_NLLGradient(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	logits := fromSlice(t, backend, []float32{0, 0, 0, 0}, tensor.Shape{2, 2})
	targets, err := tensor.FromSlice[int32, Backend]([]int32{0, -1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	loss := tensor.New[float32, Backend](backend.NLLLoss(logits.Raw(), targets.Raw(), -1), backend)
	grads := autodiff.Backward(loss, backend)

	// Uniform logits give softmax 0.5; target class gets (0.5-1)/count,
	// the other class 0.5/count, and the ignored sample exactly zero.
	assertGradClose(t, grads, logits.Raw(), []float32{-0.5, 0, 0.5, 0}, 1e-6)
}

func TestBackward_GradientAccumulation(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x := fromSlice(t, backend, []float32{3}, tensor.Shape{1})
	// y = x*x + x uses x in three places.
	y := x.Mul(x).Add(x)

	grads := autodiff.Backward(y, backend)
	assertGradClose(t, grads, x.Raw(), []float32{7}, 1e-5)
}

func TestBackward_NoOpsPanics(t *testing.T) {
	backend := newBackend()
	x := fromSlice(t, backend, []float32{1}, tensor.Shape{1})

	defer func() {
		if recover() == nil {
			t.Error("Backward with an empty tape should panic")
		}
	}()
	autodiff.Backward(x, backend)
}
