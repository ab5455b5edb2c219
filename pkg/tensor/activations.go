package tensor

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Activation is an element-wise function applied after a projection.
// A nil Activation means identity.
type Activation func(*Tensor) *Tensor

// GELU applies the Gaussian Error Linear Unit activation function.
//
// The tanh approximation is used:
//
//	GELU(x) = 0.5 * x * (1 + tanh(sqrt(2/π) * (x + 0.044715 * x^3)))
//
// Reference: https://arxiv.org/abs/1606.08415
func (t *Tensor) GELU() *Tensor {
	const (
		sqrt2OverPi = 0.7978845608 // sqrt(2/π)
		coeff       = 0.044715
	)

	return t.Map(func(x float32) float32 {
		inner := x + coeff*x*x*x
		return 0.5 * x * (1 + float32(math.Tanh(float64(sqrt2OverPi*inner))))
	})
}

// ReLU returns max(0, x) element-wise.
func (t *Tensor) ReLU() *Tensor {
	return t.Map(func(x float32) float32 {
		if x < 0 {
			return 0
		}
		return x
	})
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor) Tanh() *Tensor {
	return t.Map(func(x float32) float32 {
		return float32(math.Tanh(float64(x)))
	})
}

// Sigmoid applies the logistic function element-wise.
func (t *Tensor) Sigmoid() *Tensor {
	return t.Map(func(x float32) float32 {
		return float32(1 / (1 + math.Exp(-float64(x))))
	})
}

// GELU is a standalone function that applies GELU to a tensor.
func GELU(t *Tensor) *Tensor { return t.GELU() }

// ReLU is a standalone function that applies ReLU to a tensor.
func ReLU(t *Tensor) *Tensor { return t.ReLU() }

// Tanh is a standalone function that applies tanh to a tensor.
func Tanh(t *Tensor) *Tensor { return t.Tanh() }

// Sigmoid is a standalone function that applies the logistic function to a tensor.
func Sigmoid(t *Tensor) *Tensor { return t.Sigmoid() }

var activations = map[string]Activation{
	"identity": nil,
	"linear":   nil,
	"relu":     ReLU,
	"tanh":     Tanh,
	"sigmoid":  Sigmoid,
	"gelu":     GELU,
}

// ActivationByName resolves a configured activation name. The empty string
// resolves to identity (nil).
func ActivationByName(name string) (Activation, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := activations[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown activation %q (known: %s)", name, strings.Join(ActivationNames(), ", "))
	}
	return fn, nil
}

// ActivationNames lists the names accepted by ActivationByName.
func ActivationNames() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
