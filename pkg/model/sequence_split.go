package model

import (
	"log/slog"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// SequenceSplitter makes a temporal stateful sequence factor times longer
// and factor times narrower.
//
// Every timestep t of the parent becomes the timesteps
// [t*factor, (t+1)*factor) of the splitter, each holding a consecutive
// 1/factor slice of the original state vector. The mask is widened the
// same way by repeating the flag of t over all of its sub-steps.
//
// With a projection configured, the parent states are first projected to
// ProjectionSize features and the projected states are split.
type SequenceSplitter struct {
	name       string
	parent     TemporalStateful
	factor     int
	projection *Dense
	stateDim   int
	logger     *slog.Logger

	states lazy[*tensor.Tensor]
	mask   lazy[*tensor.Tensor]
}

var (
	_ ModelPart        = (*SequenceSplitter)(nil)
	_ TemporalStateful = (*SequenceSplitter)(nil)
)

// NewSequenceSplitter validates cfg against the parent's feature dimension
// and registers the splitter, with its projection variables, in g.
//
// Parameters:
//   - g: graph the splitter and its variables are registered in
//   - parent: temporal stateful whose states are split
//   - cfg: split factor and the optional projection
//
// Returns:
//   - ErrConfiguration when the parent dimension, or the projection size if
//     one is set, is not divisible by cfg.Factor
//   - ErrDuplicatePart when the name or a variable name is taken; nothing
//     is registered in that case
func NewSequenceSplitter(g *Graph, parent TemporalStateful, cfg SplitterConfig) (*SequenceSplitter, error) {
	if g == nil || parent == nil {
		return nil, errors.Wrap(ErrConfiguration, "sequence splitter needs a graph and a parent")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dim := parent.StateDim()
	if dim%cfg.Factor != 0 {
		return nil, errors.Wrapf(ErrConfiguration,
			"dimension of the parent temporal stateful (%d) must be divisible by the given factor (%d)",
			dim, cfg.Factor)
	}
	if cfg.ProjectionSize%cfg.Factor != 0 {
		return nil, errors.Wrapf(ErrConfiguration,
			"projection size (%d) must be divisible by the given factor (%d)",
			cfg.ProjectionSize, cfg.Factor)
	}

	s := &SequenceSplitter{
		name:   cfg.Name,
		parent: parent,
		factor: cfg.Factor,
		logger: g.Logger().With("component", cfg.Name),
	}

	splitDim := dim
	var vars []Variable
	if cfg.ProjectionSize > 0 {
		activation, err := tensor.ActivationByName(cfg.ProjectionActivation)
		if err != nil {
			return nil, errors.Wrap(ErrConfiguration, err.Error())
		}
		s.projection = NewDense(dim, cfg.ProjectionSize, activation, rand.New(rand.NewSource(cfg.Seed)))
		splitDim = cfg.ProjectionSize
		vars = []Variable{
			{Name: s.name + "/projection/kernel", Value: s.projection.Kernel, Trainable: true},
			{Name: s.name + "/projection/bias", Value: s.projection.Bias, Trainable: true},
		}
	}
	s.stateDim = splitDim / cfg.Factor

	if err := g.Register(s, vars...); err != nil {
		return nil, err
	}

	s.logger.Debug("built sequence splitter",
		"factor", s.factor, "parent_dim", dim, "projection_size", cfg.ProjectionSize, "state_dim", s.stateDim)
	return s, nil
}

// Name implements ModelPart.
func (s *SequenceSplitter) Name() string { return s.name }

// Factor returns the split factor.
func (s *SequenceSplitter) Factor() int { return s.factor }

// Parent returns the part whose states are split.
func (s *SequenceSplitter) Parent() TemporalStateful { return s.parent }

// Projection returns the projection applied before splitting, or nil.
func (s *SequenceSplitter) Projection() *Dense { return s.projection }

// Parents implements ModelPart. A parent that is not itself a ModelPart
// contributes no dependencies.
func (s *SequenceSplitter) Parents() []ModelPart {
	if p, ok := s.parent.(ModelPart); ok {
		return []ModelPart{p}
	}
	return nil
}

// FeedDict implements ModelPart. The splitter is derived entirely from its
// parent and feeds nothing.
func (s *SequenceSplitter) FeedDict(*Dataset, bool) FeedDict {
	return FeedDict{}
}

// Dependencies implements ModelPart. It is the splitter itself plus
// whatever the parent reports as its own dependencies.
func (s *SequenceSplitter) Dependencies() PartSet {
	deps := PartSet{s: {}}
	if p, ok := s.parent.(ModelPart); ok {
		for d := range p.Dependencies() {
			deps[d] = struct{}{}
		}
	}
	return deps
}

// StateDim implements TemporalStateful.
func (s *SequenceSplitter) StateDim() int { return s.stateDim }

// TemporalStates implements TemporalStateful. It is computed once.
//
// Input shape: (batch, time, dim) - parent states
// Output shape: (batch, time*factor, StateDim())
//
// Steps:
//  1. Read the parent states
//  2. Project them to ProjectionSize features, if configured
//  3. Split every step into factor consecutive sub-steps
//
// Without a projection the result shares storage with the parent's states.
func (s *SequenceSplitter) TemporalStates() (*tensor.Tensor, error) {
	return s.states.get(func() (*tensor.Tensor, error) {
		states, err := s.parent.TemporalStates()
		if err != nil {
			return nil, errors.Wrapf(err, "%s: parent temporal states", s.name)
		}
		if states == nil {
			return nil, errors.Errorf("%s: parent returned no temporal states", s.name)
		}
		if s.projection != nil {
			if states, err = s.projection.Forward(states); err != nil {
				return nil, errors.Wrapf(err, "%s: projection", s.name)
			}
		}

		out, err := SplitByFactor(states, s.factor)
		if err != nil {
			return nil, errors.Wrap(err, s.name)
		}
		s.logger.Debug("split temporal states", "from", states.Shape, "to", out.Shape)
		return out, nil
	})
}

// TemporalMask implements TemporalStateful. It is computed once.
//
// Input shape: (batch, time) - parent mask
// Output shape: (batch, time*factor) - sub-step t*factor+k carries the flag of t
func (s *SequenceSplitter) TemporalMask() (*tensor.Tensor, error) {
	return s.mask.get(func() (*tensor.Tensor, error) {
		mask, err := s.parent.TemporalMask()
		if err != nil {
			return nil, errors.Wrapf(err, "%s: parent temporal mask", s.name)
		}
		if mask == nil {
			return nil, errors.Errorf("%s: parent returned no temporal mask", s.name)
		}

		out, err := repeatMask(mask, s.factor)
		if err != nil {
			return nil, errors.Wrap(err, s.name)
		}
		s.logger.Debug("split temporal mask", "from", mask.Shape, "to", out.Shape)
		return out, nil
	})
}

// repeatMask widens [B, T] to [B, T*factor] so that the flag of t covers
// every sub-step split out of t.
//
//	[B, T] -> [B, T, 1] -> stack -> [B, T, factor] -> split -> [B, T*factor, 1] -> [B, T*factor]
func repeatMask(mask *tensor.Tensor, factor int) (*tensor.Tensor, error) {
	if mask == nil {
		return nil, errors.New("temporal mask is nil")
	}
	if mask.NumDims() != 2 {
		return nil, errors.Errorf("temporal mask must be 2D (batch, time), got shape %v", mask.Shape)
	}

	expanded, err := tensor.ExpandDims(mask, 2)
	if err != nil {
		return nil, err
	}
	copies := make([]*tensor.Tensor, factor)
	for i := range copies {
		copies[i] = expanded
	}
	stacked, err := tensor.Stack(copies, 2)
	if err != nil {
		return nil, err
	}
	flat, err := stacked.View(stacked.Shape[:3])
	if err != nil {
		return nil, err
	}

	split, err := SplitByFactor(flat, factor)
	if err != nil {
		return nil, err
	}
	return tensor.Squeeze(split, 2)
}

// SplitByFactor reshapes [B, T, D] into [B, T*factor, D/factor]. The
// result is a row-major view sharing storage with t, so the features
// [k*D/factor, (k+1)*D/factor) of step t become step t*factor+k.
//
// Parameters:
//   - t: tensor of shape [batch, time, dim]
//   - factor: number of sub-steps per step; must divide dim
//
// Returns:
//   - the view, or ErrConfiguration for a nil or non-3D tensor, a factor
//     below 1 or a dim not divisible by factor
func SplitByFactor(t *tensor.Tensor, factor int) (*tensor.Tensor, error) {
	if t == nil {
		return nil, errors.Wrap(ErrConfiguration, "split by factor needs a tensor, got nil")
	}
	if t.NumDims() != 3 {
		return nil, errors.Wrapf(ErrConfiguration, "split by factor needs a 3D tensor, got shape %v", t.Shape)
	}
	if factor < 1 {
		return nil, errors.Wrapf(ErrConfiguration, "factor must be at least 1, got %d", factor)
	}

	batch, steps, dim := t.Shape[0], t.Shape[1], t.Shape[2]
	if dim%factor != 0 {
		return nil, errors.Wrapf(ErrConfiguration,
			"state dimension (%d) must be divisible by the given factor (%d)", dim, factor)
	}
	return t.View([]int{batch, steps * factor, dim / factor})
}
