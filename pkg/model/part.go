// Package model provides the graph-construction units of a
// sequence-to-sequence model.
//
// A model is a set of named parts registered in a Graph. Parts describe
// two independent capabilities:
//   - ModelPart: a named unit that knows its parents, what it feeds to the
//     graph for a dataset batch, and every part it transitively depends on.
//   - TemporalStateful: a producer of temporal states [batch, time, features]
//     and a temporal mask [batch, time].
//
// Derived tensors are computed on first access and cached for the lifetime
// of the part.
package model

import (
	"sort"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// FeedDict maps placeholder names to the values fed for one batch.
type FeedDict map[string]*tensor.Tensor

// ModelPart is a named, dependency-tracked unit of a model graph.
type ModelPart interface {
	// Name is unique within the part's graph.
	Name() string

	// Parents returns the parts this part reads from directly.
	Parents() []ModelPart

	// FeedDict returns the values this part contributes for a batch of ds.
	FeedDict(ds *Dataset, train bool) FeedDict

	// Dependencies returns this part and every part reachable through
	// Parents.
	Dependencies() PartSet
}

// TemporalStateful produces a batch of variable-length sequences.
type TemporalStateful interface {
	// TemporalStates has shape [batch, time, StateDim()].
	TemporalStates() (*tensor.Tensor, error)

	// TemporalMask has shape [batch, time]; 1 marks a valid position and
	// 0 marks padding.
	TemporalMask() (*tensor.Tensor, error)

	// StateDim is the feature dimension, known without computing any
	// tensor.
	StateDim() int
}

// PartSet is a set of model parts keyed by identity.
type PartSet map[ModelPart]struct{}

// Contains reports whether p is in the set.
func (s PartSet) Contains(p ModelPart) bool {
	_, ok := s[p]
	return ok
}

// Names returns the sorted names of the parts in the set.
func (s PartSet) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// Sorted returns the parts ordered by name.
func (s PartSet) Sorted() []ModelPart {
	parts := make([]ModelPart, 0, len(s))
	for p := range s {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name() < parts[j].Name() })
	return parts
}

// Walk collects root and every part reachable from it through Parents.
// Each part is visited once, so a cycle terminates the walk instead of
// looping.
func Walk(root ModelPart) PartSet {
	seen := PartSet{}
	stack := []ModelPart{root}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == nil || seen.Contains(p) {
			continue
		}
		seen[p] = struct{}{}
		stack = append(stack, p.Parents()...)
	}
	return seen
}
