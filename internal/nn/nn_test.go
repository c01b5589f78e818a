package nn

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

func TestLinear_KnownWeights(t *testing.T) {
	backend := newBackend()
	layer := NewLinear[Backend](2, 3, backend)

	// W = [[1,0],[0,1],[1,1]], b = [0,0,1]
	copy(layer.Weight().Tensor().Data(), []float32{1, 0, 0, 1, 1, 1})
	copy(layer.Bias().Tensor().Data(), []float32{0, 0, 1})

	// Two columns: (1,2) and (3,4).
	input := fromSlice(t, backend, []float32{1, 3, 2, 4}, tensor.Shape{2, 2})
	output := layer.Forward(input)

	if !output.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("output shape = %v, want [3 2]", output.Shape())
	}
	want := []float32{1, 3, 2, 4, 4, 8}
	for i, w := range want {
		if got := output.Data()[i]; math.Abs(float64(got-w)) > 1e-5 {
			t.Errorf("output[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestLinear_TrailingDims(t *testing.T) {
	backend := newBackend()
	layer := NewLinear[Backend](4, 6, backend)

	input := tensor.Randn[float32](tensor.Shape{4, 3, 2}, backend)
	output := layer.Forward(input)

	if !output.Shape().Equal(tensor.Shape{6, 3, 2}) {
		t.Errorf("output shape = %v, want [6 3 2]", output.Shape())
	}
}

func TestLinear_WrongFeaturesPanics(t *testing.T) {
	backend := newBackend()
	layer := NewLinear[Backend](4, 6, backend)
	input := tensor.Randn[float32](tensor.Shape{5, 2}, backend)

	defer func() {
		if recover() == nil {
			t.Error("Forward with wrong feature count should panic")
		}
	}()
	layer.Forward(input)
}

func TestLayerNorm_AxisZeroStatistics(t *testing.T) {
	backend := newBackend()
	ln := NewLayerNorm[Backend](4, 1e-12, backend)

	input := fromSlice(t, backend, []float32{
		1, -5, 2, 0, 3, 7, 4, 100,
	}, tensor.Shape{4, 2})
	output := ln.Forward(input)

	// With default gamma/beta each column must be zero-mean, unit-variance
	// over axis 0 (uncorrected variance).
	data := output.Data()
	for col := 0; col < 2; col++ {
		var sum, sumSq float64
		for row := 0; row < 4; row++ {
			v := float64(data[row*2+col])
			sum += v
			sumSq += v * v
		}
		mean := sum / 4
		variance := sumSq/4 - mean*mean
		if math.Abs(mean) > 1e-4 {
			t.Errorf("column %d mean = %v, want 0", col, mean)
		}
		if math.Abs(variance-1) > 1e-3 {
			t.Errorf("column %d variance = %v, want 1", col, variance)
		}
	}
}

func TestLayerNorm_GammaBeta(t *testing.T) {
	backend := newBackend()
	ln := NewLayerNorm[Backend](2, 1e-12, backend)

	copy(ln.Gamma.Tensor().Data(), []float32{2, 3})
	copy(ln.Beta.Tensor().Data(), []float32{0.5, 1})

	input := fromSlice(t, backend, []float32{1, 3}, tensor.Shape{2, 1})
	output := ln.Forward(input)

	// Normalized column is (-1, 1); scaled and shifted: (2*-1+0.5, 3*1+1).
	want := []float32{-1.5, 4}
	for i, w := range want {
		if got := output.Data()[i]; math.Abs(float64(got-w)) > 1e-3 {
			t.Errorf("output[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestLayerNorm_ThreeDims(t *testing.T) {
	backend := newBackend()
	ln := NewLayerNorm[Backend](8, 1e-12, backend)

	input := tensor.Randn[float32](tensor.Shape{8, 3, 2}, backend)
	output := ln.Forward(input)

	if !output.Shape().Equal(tensor.Shape{8, 3, 2}) {
		t.Fatalf("output shape = %v, want [8 3 2]", output.Shape())
	}

	// Spot-check one (seq, batch) lane.
	var sum float64
	for f := 0; f < 8; f++ {
		sum += float64(output.At(f, 1, 1))
	}
	if math.Abs(sum/8) > 1e-4 {
		t.Errorf("lane mean = %v, want 0", sum/8)
	}
}

func TestEmbedding_Lookup(t *testing.T) {
	backend := newBackend()
	embed := NewEmbedding[Backend](3, 2, backend)

	// Columns: id0 = (1,10), id1 = (2,20), id2 = (3,30).
	copy(embed.Weight.Tensor().Data(), []float32{1, 2, 3, 10, 20, 30})

	indices, err := tensor.FromSlice[int32, Backend]([]int32{2, 0}, tensor.Shape{2, 1}, backend)
	if err != nil {
		t.Fatal(err)
	}

	out := embed.Forward(indices)
	if !out.Shape().Equal(tensor.Shape{2, 2, 1}) {
		t.Fatalf("output shape = %v, want [2 2 1]", out.Shape())
	}
	want := []float32{3, 1, 30, 10}
	for i, w := range want {
		if got := out.Data()[i]; got != w {
			t.Errorf("output[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestDropout_EvalIsIdentity(t *testing.T) {
	backend := newBackend()
	dropout := NewDropout[Backend](0.5, backend)
	dropout.SetTraining(false)

	input := fromSlice(t, backend, []float32{1, 2, 3, 4}, tensor.Shape{4})
	output := dropout.Forward(input)

	for i := range input.Data() {
		if output.Data()[i] != input.Data()[i] {
			t.Fatal("eval-mode dropout must be the identity")
		}
	}
}

func TestDropout_TrainZeroesAndRescales(t *testing.T) {
	backend := newBackend()
	dropout := NewDropout[Backend](0.5, backend)

	n := 10000
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	input := fromSlice(t, backend, data, tensor.Shape{n})
	output := dropout.Forward(input)

	zeros := 0
	var sum float64
	for _, v := range output.Data() {
		if v == 0 {
			zeros++
		} else if math.Abs(float64(v)-2) > 1e-6 {
			t.Fatalf("surviving element = %v, want 2 (scaled by 1/(1-p))", v)
		}
		sum += float64(v)
	}

	if zeros < n/2-500 || zeros > n/2+500 {
		t.Errorf("zeroed %d of %d elements, want ~%d", zeros, n, n/2)
	}
	// Rescaling keeps the expected sum.
	if math.Abs(sum/float64(n)-1) > 0.1 {
		t.Errorf("mean after dropout = %v, want ~1", sum/float64(n))
	}
}

func TestDropout_InvalidProbabilityPanics(t *testing.T) {
	backend := newBackend()
	defer func() {
		if recover() == nil {
			t.Error("NewDropout(1.0) should panic")
		}
	}()
	NewDropout[Backend](1.0, backend)
}

func TestDense_DefaultsToIdentityActivation(t *testing.T) {
	backend := newBackend()
	dense := NewDense[Backend](2, 2, 0, nil, backend)
	dense.SetTraining(false)

	copy(dense.Linear().Weight().Tensor().Data(), []float32{1, 0, 0, 1})
	copy(dense.Linear().Bias().Tensor().Data(), []float32{0, 0})

	input := fromSlice(t, backend, []float32{-3, 5}, tensor.Shape{2, 1})
	output := dense.Forward(input)

	// Identity weights, no activation: output equals input (negatives kept).
	if output.Data()[0] != -3 || output.Data()[1] != 5 {
		t.Errorf("output = %v, want [-3 5]", output.Data())
	}
}

func TestActivationByName(t *testing.T) {
	backend := newBackend()
	input := fromSlice(t, backend, []float32{-1, 0, 2}, tensor.Shape{3})

	relu := ActivationByName[Backend]("relu")
	out := relu.Forward(input)
	if out.Data()[0] != 0 || out.Data()[2] != 2 {
		t.Errorf("relu output = %v", out.Data())
	}

	defer func() {
		if recover() == nil {
			t.Error("unknown activation name should panic")
		}
	}()
	ActivationByName[Backend]("swish-cubed")
}

func TestNLLLoss_AllIgnoredIsZero(t *testing.T) {
	backend := newBackend()
	loss := NewNLLLoss[Backend](-1, backend)

	logits := fromSlice(t, backend, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	targets, err := tensor.FromSlice[int32, Backend]([]int32{-1, -1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	out := loss.Forward(logits, targets)
	if got := out.Item(); got != 0 {
		t.Errorf("all-ignored loss = %v, want exactly 0", got)
	}
}

func TestNLLLoss_PerfectPredictionNearZero(t *testing.T) {
	backend := newBackend()
	loss := NewNLLLoss[Backend](-1, backend)

	logits := fromSlice(t, backend, []float32{100, 0, 0, 100}, tensor.Shape{2, 2})
	targets, err := tensor.FromSlice[int32, Backend]([]int32{0, 1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	out := loss.Forward(logits, targets)
	if got := out.Item(); got < 0 || got > 1e-5 {
		t.Errorf("confident correct prediction loss = %v, want ~0", got)
	}
}

func TestLinear_GradientsFlow(t *testing.T) {
	backend := newBackend()
	layer := NewLinear[Backend](3, 2, backend)

	backend.Tape().StartRecording()
	input := fromSlice(t, backend, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	output := layer.Forward(input)

	grads := autodiff.Backward(output, backend)

	for _, p := range layer.Parameters() {
		grad, ok := grads[p.Tensor().Raw()]
		if !ok {
			t.Fatalf("no gradient for parameter %s", p.Name())
		}
		if !grad.Shape().Equal(p.Tensor().Shape()) {
			t.Errorf("gradient shape %v does not match parameter %s shape %v",
				grad.Shape(), p.Name(), p.Tensor().Shape())
		}
	}
}
