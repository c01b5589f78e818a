package autodiff_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/loam-ml/loam/internal/autodiff"
	"github.com/loam-ml/loam/internal/tensor"
)

// checkNumericGradient compares an analytic gradient against central finite
// differences of a scalar loss function evaluated on the raw input data.
func checkNumericGradient(t *testing.T, data []float32, analytic *tensor.RawTensor, loss func() float32, eps, tol float64) {
	t.Helper()
	grad := analytic.AsFloat32()
	if len(grad) != len(data) {
		t.Fatalf("gradient length = %d, want %d", len(grad), len(data))
	}
	for i := range data {
		orig := data[i]
		data[i] = orig + float32(eps)
		plus := float64(loss())
		data[i] = orig - float32(eps)
		minus := float64(loss())
		data[i] = orig

		numeric := (plus - minus) / (2 * eps)
		if math.Abs(float64(grad[i])-numeric) > tol {
			t.Errorf("element %d: analytic %v, numeric %v", i, grad[i], numeric)
		}
	}
}

func TestGradientCheck_Softmax(t *testing.T) {
	backend := newBackend()
	inner := backend.Inner()
	rng := rand.New(rand.NewSource(7))

	xData := make([]float32, 12)
	wData := make([]float32, 12)
	for i := range xData {
		xData[i] = rng.Float32()*2 - 1
		wData[i] = rng.Float32()*2 - 1
	}

	backend.Tape().StartRecording()
	x := fromSlice(t, backend, xData, tensor.Shape{4, 3})
	w := fromSlice(t, backend, wData, tensor.Shape{4, 3})
	y := x.Softmax(0).Mul(w).Sum()

	grads := autodiff.Backward(y, backend)
	analytic, ok := grads[x.Raw()]
	if !ok {
		t.Fatal("no gradient for softmax input")
	}

	// Re-evaluate the same graph on the inner backend so the finite
	// differences see no tape recording.
	checkNumericGradient(t, x.Raw().AsFloat32(), analytic, func() float32 {
		sm := inner.Softmax(x.Raw(), 0)
		return inner.Sum(inner.Mul(sm, w.Raw())).AsFloat32()[0]
	}, 1e-2, 1e-3)
}

func TestGradientCheck_NLLLoss(t *testing.T) {
	backend := newBackend()
	inner := backend.Inner()
	rng := rand.New(rand.NewSource(11))

	logitsData := make([]float32, 3*4)
	for i := range logitsData {
		logitsData[i] = rng.Float32()*2 - 1
	}

	backend.Tape().StartRecording()
	logits := fromSlice(t, backend, logitsData, tensor.Shape{3, 4})
	targets, err := tensor.FromSlice[int32, Backend]([]int32{0, 2, -1, 1}, tensor.Shape{4}, backend)
	if err != nil {
		t.Fatal(err)
	}

	loss := tensor.New[float32, Backend](backend.NLLLoss(logits.Raw(), targets.Raw(), -1), backend)
	grads := autodiff.Backward(loss, backend)
	analytic, ok := grads[logits.Raw()]
	if !ok {
		t.Fatal("no gradient for logits")
	}

	checkNumericGradient(t, logits.Raw().AsFloat32(), analytic, func() float32 {
		return inner.NLLLoss(logits.Raw(), targets.Raw(), -1).AsFloat32()[0]
	}, 1e-2, 1e-3)
}
