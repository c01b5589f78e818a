package cpu

import (
	"fmt"
	"math"

	"github.com/loam-ml/loam/internal/tensor"
)

// NLLLoss computes the mean negative log-likelihood of class-first logits.
//
// Logits are [numClasses, n] (class axis first, one column per sample) and
// targets are [n] int32 class indices. Samples whose target equals
// ignoreIndex are excluded from the mean; when every sample is ignored the
// loss is a zero scalar, not NaN.
//
// Log-probabilities use the log-sum-exp trick for numerical stability.
func (cpu *CPUBackend) NLLLoss(logits, targets *tensor.RawTensor, ignoreIndex int) *tensor.RawTensor {
	lShape := logits.Shape()
	if len(lShape) != 2 {
		panic(fmt.Sprintf("nll_loss: logits must be 2D [numClasses, n], got %v", lShape))
	}
	tShape := targets.Shape()
	if len(tShape) != 1 || tShape[0] != lShape[1] {
		panic(fmt.Sprintf("nll_loss: targets must be [%d], got %v", lShape[1], tShape))
	}
	if logits.DType() != tensor.Float32 {
		panic(fmt.Sprintf("nll_loss: only float32 logits supported, got %s", logits.DType()))
	}

	numClasses, n := lShape[0], lShape[1]
	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()

	var total float64
	count := 0
	for i := 0; i < n; i++ {
		target := int(targetsData[i])
		if target == ignoreIndex {
			continue
		}
		if target < 0 || target >= numClasses {
			panic(fmt.Sprintf("nll_loss: target %d out of range [0, %d)", target, numClasses))
		}

		// Column i has element stride n.
		maxVal := logitsData[i]
		for c := 1; c < numClasses; c++ {
			if v := logitsData[c*n+i]; v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for c := 0; c < numClasses; c++ {
			sumExp += math.Exp(float64(logitsData[c*n+i] - maxVal))
		}
		logSumExp := float64(maxVal) + math.Log(sumExp)

		total += logSumExp - float64(logitsData[target*n+i])
		count++
	}

	result := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32, cpu.device)
	if count > 0 {
		result.AsFloat32()[0] = float32(total / float64(count))
	}
	return result
}
