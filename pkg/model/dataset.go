package model

import (
	"sort"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// MaskSuffix names the optional mask series that accompanies a data series.
const MaskSuffix = "_mask"

// Dataset is a named collection of batched tensor series.
type Dataset struct {
	name   string
	series map[string]*tensor.Tensor
}

// NewDataset creates an empty dataset.
func NewDataset(name string) *Dataset {
	return &Dataset{name: name, series: make(map[string]*tensor.Tensor)}
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Add stores a series under id, replacing any previous value.
func (d *Dataset) Add(id string, t *tensor.Tensor) *Dataset {
	d.series[id] = t
	return d
}

// Series looks up a series. A nil dataset has no series.
func (d *Dataset) Series(id string) (*tensor.Tensor, bool) {
	if d == nil {
		return nil, false
	}
	t, ok := d.series[id]
	return t, ok
}

// SeriesIDs returns the sorted series identifiers.
func (d *Dataset) SeriesIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.series))
	for id := range d.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
