package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

func TestNewTemporalInput(t *testing.T) {
	r := require.New(t)
	g := NewGraph()

	in, err := NewTemporalInput(g, "encoder", rangeTensor(t, 2, 3, 4), nil)
	r.NoError(err)
	r.Equal(4, in.StateDim())
	r.Empty(in.Parents())
	r.Equal([]string{"encoder"}, in.Dependencies().Names())

	mask, err := in.TemporalMask()
	r.NoError(err)
	r.Equal([]int{2, 3}, mask.Shape)
	for _, v := range mask.Data {
		r.Equal(float32(1), v)
	}
}

func TestNewTemporalInput_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		states *tensor.Tensor
		mask   *tensor.Tensor
	}{
		{"nil states", nil, nil},
		{"2D states", tensor.NewTensor([]int{2, 3}), nil},
		{"mask batch mismatch", tensor.NewTensor([]int{2, 3, 4}), tensor.NewTensor([]int{1, 3})},
		{"mask time mismatch", tensor.NewTensor([]int{2, 3, 4}), tensor.NewTensor([]int{2, 4})},
		{"3D mask", tensor.NewTensor([]int{2, 3, 4}), tensor.NewTensor([]int{2, 3, 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemporalInput(NewGraph(), "encoder", tt.states, tt.mask)
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestTemporalInputFromDataset(t *testing.T) {
	r := require.New(t)
	mask, err := tensor.FromSlice([]float32{1, 0}, []int{1, 2})
	r.NoError(err)
	ds := NewDataset("train").
		Add("source", rangeTensor(t, 1, 2, 4)).
		Add("source"+MaskSuffix, mask)
	r.Equal([]string{"source", "source_mask"}, ds.SeriesIDs())

	g := NewGraph()
	in, err := NewTemporalInputFromDataset(g, "encoder", ds, "source")
	r.NoError(err)
	got, err := in.TemporalMask()
	r.NoError(err)
	r.Same(mask, got)

	// A later batch of the same series is what gets fed.
	next := NewDataset("train").Add("source", rangeTensor(t, 3, 5, 4))
	fd := in.FeedDict(next, true)
	r.Equal([]int{3, 5, 4}, fd["encoder/states"].Shape)
	r.Same(mask, fd["encoder/mask"], "without a mask series the bound mask is fed")

	fd = in.FeedDict(nil, false)
	r.Equal([]int{1, 2, 4}, fd["encoder/states"].Shape)

	_, err = NewTemporalInputFromDataset(g, "other", ds, "target")
	r.ErrorIs(err, ErrConfiguration)
	r.ErrorContains(err, `dataset "train" has no series "target"`)
}

func TestDatasetNil(t *testing.T) {
	var ds *Dataset
	_, ok := ds.Series("x")
	require.False(t, ok)
	require.Empty(t, ds.SeriesIDs())
	require.Empty(t, ds.Name())
}
