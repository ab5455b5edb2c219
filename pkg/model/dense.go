package model

import (
	"fmt"
	"math/rand"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// Dense is a fully connected projection over the last axis.
//
//	y = activation(x @ Kernel + Bias)
//
// Input shape: (..., in_dim)
// Output shape: (..., out_dim)
type Dense struct {
	Kernel     *tensor.Tensor // (in_dim, out_dim)
	Bias       *tensor.Tensor // (out_dim,)
	Activation tensor.Activation
}

// NewDense creates a projection with a Xavier-uniform kernel drawn from rng
// and a zero bias.
//
// Parameters:
//   - inDim: size of the input's last axis
//   - outDim: size of the output's last axis
//   - activation: applied after the bias; nil is identity
//   - rng: source for the kernel initialization
//
// Returns:
//   - Initialized Dense
func NewDense(inDim, outDim int, activation tensor.Activation, rng *rand.Rand) *Dense {
	kernel := tensor.NewTensor([]int{inDim, outDim})
	xavierUniformInit(kernel, rng)

	return &Dense{
		Kernel:     kernel,
		Bias:       tensor.NewTensor([]int{outDim}),
		Activation: activation,
	}
}

// InDim returns the expected size of the input's last axis.
func (d *Dense) InDim() int { return d.Kernel.Shape[0] }

// OutDim returns the size of the output's last axis.
func (d *Dense) OutDim() int { return d.Kernel.Shape[1] }

// Forward applies the projection.
//
// Input shape: (..., in_dim)
// Output shape: (..., out_dim)
//
// Steps:
//  1. projected = x @ Kernel
//  2. projected += Bias
//  3. Apply Activation, if any
func (d *Dense) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x == nil {
		return nil, fmt.Errorf("expected an input tensor, got nil")
	}
	if len(x.Shape) < 2 {
		return nil, fmt.Errorf("expected at least 2D input, got %dD", len(x.Shape))
	}

	if lastDim := x.Shape[len(x.Shape)-1]; lastDim != d.InDim() {
		return nil, fmt.Errorf("input dimension %d doesn't match projection input dimension %d",
			lastDim, d.InDim())
	}

	// x: (batch, time, in_dim) @ Kernel: (in_dim, out_dim) -> (batch, time, out_dim)
	projected, err := tensor.Matmul(x, d.Kernel)
	if err != nil {
		return nil, fmt.Errorf("failed to compute projection: %w", err)
	}

	out, err := tensor.AddBias(projected, d.Bias)
	if err != nil {
		return nil, fmt.Errorf("failed to add projection bias: %w", err)
	}

	if d.Activation != nil {
		out = d.Activation(out)
	}
	return out, nil
}
