package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

func TestNewDense(t *testing.T) {
	r := require.New(t)
	d := NewDense(6, 10, nil, rand.New(rand.NewSource(7)))

	r.Equal([]int{6, 10}, d.Kernel.Shape)
	r.Equal([]int{10}, d.Bias.Shape)
	r.Equal(6, d.InDim())
	r.Equal(10, d.OutDim())

	limit := math.Sqrt(6.0 / 16.0)
	nonZero := 0
	for _, v := range d.Kernel.Data {
		r.LessOrEqual(math.Abs(float64(v)), limit)
		if v != 0 {
			nonZero++
		}
	}
	r.Positive(nonZero)
	for _, v := range d.Bias.Data {
		r.Zero(v)
	}

	same := NewDense(6, 10, nil, rand.New(rand.NewSource(7)))
	r.Equal(d.Kernel.Data, same.Kernel.Data, "same seed, same weights")
}

func TestDenseForward(t *testing.T) {
	r := require.New(t)
	d := NewDense(2, 2, tensor.ReLU, rand.New(rand.NewSource(1)))
	copy(d.Kernel.Data, []float32{1, -1, 2, 1})
	copy(d.Bias.Data, []float32{0, -10})

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, []int{1, 2, 2})
	r.NoError(err)

	out, err := d.Forward(x)
	r.NoError(err)
	r.Equal([]int{1, 2, 2}, out.Shape)
	// [1 2] @ K = [5 1] + b = [5 -9] -> relu [5 0]; [3 4] @ K = [11 1] -> [11 0]
	r.Equal([]float32{5, 0, 11, 0}, out.Data)
}

func TestDenseForwardErrors(t *testing.T) {
	r := require.New(t)
	d := NewDense(3, 2, nil, rand.New(rand.NewSource(1)))

	_, err := d.Forward(tensor.NewTensor([]int{3}))
	r.ErrorContains(err, "expected at least 2D input")

	_, err = d.Forward(tensor.NewTensor([]int{1, 2, 4}))
	r.ErrorContains(err, "input dimension 4 doesn't match projection input dimension 3")

	_, err = d.Forward(nil)
	r.ErrorContains(err, "got nil")
}
