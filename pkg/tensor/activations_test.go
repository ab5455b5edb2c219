package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGELU tests GELU against reference values from PyTorch
func TestGELU(t *testing.T) {
	testCases := []struct {
		input    float32
		expected float32
	}{
		{0.0, 0.0},
		{1.0, 0.8413},
		{2.0, 1.9545},
		{0.5, 0.3457},
		{-1.0, -0.1587},
		{-2.0, -0.0455},
		{-0.5, -0.1543},
	}

	for _, tc := range testCases {
		input := Full([]int{1}, tc.input)
		require.InDelta(t, tc.expected, input.GELU().Data[0], 0.001, "GELU(%v)", tc.input)
	}
}

func TestActivationValues(t *testing.T) {
	input, err := FromSlice([]float32{-2, 0, 3}, []int{3})
	require.NoError(t, err)

	tests := []struct {
		name     string
		expected []float32
	}{
		{"relu", []float32{0, 0, 3}},
		{"tanh", []float32{float32(math.Tanh(-2)), 0, float32(math.Tanh(3))}},
		{"sigmoid", []float32{float32(1 / (1 + math.Exp(2))), 0.5, float32(1 / (1 + math.Exp(-3)))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			fn, err := ActivationByName(tt.name)
			r.NoError(err)
			r.NotNil(fn)

			out := fn(input)
			r.Equal(input.Shape, out.Shape)
			r.InDeltaSlice(tt.expected, out.Data, 1e-6)
			r.Equal([]float32{-2, 0, 3}, input.Data, "input must not be modified")
		})
	}
}

func TestActivationByName(t *testing.T) {
	r := require.New(t)

	for _, name := range []string{"", "identity", "linear"} {
		fn, err := ActivationByName(name)
		r.NoError(err)
		r.Nil(fn, "%q should resolve to identity", name)
	}

	fn, err := ActivationByName("ReLU")
	r.NoError(err)
	r.NotNil(fn)

	_, err = ActivationByName("swish")
	r.ErrorContains(err, `unknown activation "swish"`)

	r.Equal([]string{"gelu", "identity", "linear", "relu", "sigmoid", "tanh"}, ActivationNames())
}

// BenchmarkGELU benchmarks the GELU function
func BenchmarkGELU(b *testing.B) {
	input := NewTensor([]int{1000})
	for i := range input.Data {
		input.Data[i] = float32(i%10) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = input.GELU()
	}
}
