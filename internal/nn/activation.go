package nn

import (
	"fmt"

	"github.com/loam-ml/loam/internal/tensor"
)

// GELU applies the Gaussian error linear unit, the standard activation in
// BERT-style feed-forward blocks. Uses the exact erf formulation.
type GELU[B tensor.Backend] struct{}

// NewGELU creates a GELU activation.
func NewGELU[B tensor.Backend]() *GELU[B] { return &GELU[B]{} }

// Forward applies GELU element-wise.
func (g *GELU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.GELU()
}

// Parameters returns an empty slice.
func (g *GELU[B]) Parameters() []*Parameter[B] { return nil }

// ReLU applies the rectified linear unit max(x, 0).
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

// Forward applies ReLU element-wise.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// Parameters returns an empty slice.
func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] { return &Tanh[B]{} }

// Forward applies tanh element-wise.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Tanh()
}

// Parameters returns an empty slice.
func (t *Tanh[B]) Parameters() []*Parameter[B] { return nil }

// Identity passes the input through unchanged. Used as the default
// activation where none is configured.
type Identity[B tensor.Backend] struct{}

// NewIdentity creates an Identity activation.
func NewIdentity[B tensor.Backend]() *Identity[B] { return &Identity[B]{} }

// Forward returns the input unchanged.
func (id *Identity[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input
}

// Parameters returns an empty slice.
func (id *Identity[B]) Parameters() []*Parameter[B] { return nil }

// ActivationByName returns the activation module for a configuration
// string. Recognized names: "gelu", "relu", "tanh", "identity" (or "").
// Panics on an unknown name.
func ActivationByName[B tensor.Backend](name string) Module[B] {
	switch name {
	case "gelu":
		return NewGELU[B]()
	case "relu":
		return NewReLU[B]()
	case "tanh":
		return NewTanh[B]()
	case "identity", "":
		return NewIdentity[B]()
	default:
		panic(fmt.Sprintf("unknown activation %q", name))
	}
}
