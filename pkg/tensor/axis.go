package tensor

import "fmt"

// normalizeAxis maps a possibly negative axis onto [0, rank).
func normalizeAxis(axis, rank int) (int, error) {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return 0, fmt.Errorf("axis %d out of range for rank %d", axis, rank)
	}
	return axis, nil
}

// ExpandDims inserts a unit axis at the given position.
// The result shares storage with t.
//
//	[B, T] -- ExpandDims(2) --> [B, T, 1]
func ExpandDims(t *Tensor, axis int) (*Tensor, error) {
	axis, err := normalizeAxis(axis, len(t.Shape)+1)
	if err != nil {
		return nil, err
	}

	newShape := make([]int, 0, len(t.Shape)+1)
	newShape = append(newShape, t.Shape[:axis]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, t.Shape[axis:]...)
	return t.View(newShape)
}

// Squeeze removes a unit axis. The result shares storage with t.
func Squeeze(t *Tensor, axis int) (*Tensor, error) {
	axis, err := normalizeAxis(axis, len(t.Shape))
	if err != nil {
		return nil, err
	}
	if t.Shape[axis] != 1 {
		return nil, fmt.Errorf("cannot squeeze axis %d of size %d in shape %v", axis, t.Shape[axis], t.Shape)
	}

	newShape := make([]int, 0, len(t.Shape)-1)
	newShape = append(newShape, t.Shape[:axis]...)
	newShape = append(newShape, t.Shape[axis+1:]...)
	return t.View(newShape)
}

// Stack joins equally shaped tensors along a new axis.
//
// Stacking k tensors of shape [d0, ..., dn] on axis a gives
// [d0, ..., d(a-1), k, da, ..., dn]. Elements are copied.
func Stack(tensors []*Tensor, axis int) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("cannot stack empty list of tensors")
	}

	base := tensors[0].Shape
	axis, err := normalizeAxis(axis, len(base)+1)
	if err != nil {
		return nil, err
	}
	for i, t := range tensors[1:] {
		if !sameShape(t.Shape, base) {
			return nil, fmt.Errorf("tensor %d has shape %v, incompatible with %v", i+1, t.Shape, base)
		}
	}

	outShape := make([]int, 0, len(base)+1)
	outShape = append(outShape, base[:axis]...)
	outShape = append(outShape, len(tensors))
	outShape = append(outShape, base[axis:]...)
	result := NewTensor(outShape)

	outer := numElements(base[:axis])
	inner := numElements(base[axis:])
	k := len(tensors)
	for o := 0; o < outer; o++ {
		for i, t := range tensors {
			dst := (o*k + i) * inner
			copy(result.Data[dst:dst+inner], t.Data[o*inner:(o+1)*inner])
		}
	}
	return result, nil
}
