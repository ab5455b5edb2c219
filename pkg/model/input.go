package model

import (
	"github.com/pkg/errors"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// TemporalInput is a source part holding a batch of encoded sequences. It
// has no parents and is usually the root that derived parts are built on.
type TemporalInput struct {
	name   string
	dataID string
	states *tensor.Tensor // (batch, time, dim)
	mask   *tensor.Tensor // (batch, time)
}

var (
	_ ModelPart        = (*TemporalInput)(nil)
	_ TemporalStateful = (*TemporalInput)(nil)
)

// NewTemporalInput creates an input part from states and an optional mask.
// A nil mask marks every position valid.
func NewTemporalInput(g *Graph, name string, states, mask *tensor.Tensor) (*TemporalInput, error) {
	return newTemporalInput(g, name, "", states, mask)
}

// NewTemporalInputFromDataset creates an input part from the series dataID
// of ds. The series dataID+MaskSuffix, if present, is used as the mask.
func NewTemporalInputFromDataset(g *Graph, name string, ds *Dataset, dataID string) (*TemporalInput, error) {
	states, ok := ds.Series(dataID)
	if !ok {
		return nil, errors.Wrapf(ErrConfiguration, "dataset %q has no series %q", ds.Name(), dataID)
	}
	mask, _ := ds.Series(dataID + MaskSuffix)
	return newTemporalInput(g, name, dataID, states, mask)
}

func newTemporalInput(g *Graph, name, dataID string, states, mask *tensor.Tensor) (*TemporalInput, error) {
	if states == nil || states.NumDims() != 3 {
		return nil, errors.Wrapf(ErrConfiguration, "temporal states of %q must be 3D (batch, time, dim)", name)
	}
	batch, steps := states.Shape[0], states.Shape[1]
	if mask == nil {
		mask = tensor.Full([]int{batch, steps}, 1)
	}
	if mask.NumDims() != 2 || mask.Shape[0] != batch || mask.Shape[1] != steps {
		return nil, errors.Wrapf(ErrConfiguration, "temporal mask of %q has shape %v, expected [%d %d]",
			name, mask.Shape, batch, steps)
	}

	in := &TemporalInput{name: name, dataID: dataID, states: states, mask: mask}
	if err := g.Register(in); err != nil {
		return nil, err
	}
	return in, nil
}

// Name implements ModelPart.
func (in *TemporalInput) Name() string { return in.name }

// Parents implements ModelPart. Inputs have none.
func (in *TemporalInput) Parents() []ModelPart { return nil }

// FeedDict implements ModelPart. When the input is bound to a dataset
// series and ds carries it, the batch from ds is fed; otherwise the values
// the input was built with are.
func (in *TemporalInput) FeedDict(ds *Dataset, _ bool) FeedDict {
	states, mask := in.states, in.mask
	if in.dataID != "" {
		if s, ok := ds.Series(in.dataID); ok {
			states = s
			if m, ok := ds.Series(in.dataID + MaskSuffix); ok {
				mask = m
			}
		}
	}
	return FeedDict{
		in.name + "/states": states,
		in.name + "/mask":   mask,
	}
}

// Dependencies implements ModelPart.
func (in *TemporalInput) Dependencies() PartSet { return Walk(in) }

// TemporalStates implements TemporalStateful.
func (in *TemporalInput) TemporalStates() (*tensor.Tensor, error) { return in.states, nil }

// TemporalMask implements TemporalStateful.
func (in *TemporalInput) TemporalMask() (*tensor.Tensor, error) { return in.mask, nil }

// StateDim implements TemporalStateful.
func (in *TemporalInput) StateDim() int { return in.states.Shape[2] }
