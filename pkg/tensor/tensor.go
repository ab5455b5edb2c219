// Package tensor provides the dense float32 tensors that model parts are
// built from.
//
// Tensors are stored row-major in a flat slice. Shape changes that keep the
// element order (View, ExpandDims, Squeeze) share storage with
// their source; everything else allocates.
package tensor

import (
	"fmt"
	"math"
	"strings"
)

// Tensor represents a multi-dimensional array of float32 values.
type Tensor struct {
	Data    []float32 // Flattened row-major storage
	Shape   []int     // Dimensions (e.g., [batch, time, features])
	Strides []int     // Precomputed strides for indexing
}

// NewTensor creates a zero-filled tensor with the given shape.
func NewTensor(shape []int) *Tensor {
	return &Tensor{
		Data:    make([]float32, numElements(shape)),
		Shape:   copyShape(shape),
		Strides: computeStrides(shape),
	}
}

// FromSlice creates a tensor holding a copy of data.
// Returns an error if data size doesn't match the shape.
func FromSlice(data []float32, shape []int) (*Tensor, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	if expected := numElements(shape); len(data) != expected {
		return nil, fmt.Errorf("data size %d does not match shape %v (expected %d elements)",
			len(data), shape, expected)
	}

	dataCopy := make([]float32, len(data))
	copy(dataCopy, data)

	return &Tensor{
		Data:    dataCopy,
		Shape:   copyShape(shape),
		Strides: computeStrides(shape),
	}, nil
}

// Full creates a tensor with every element set to value.
func Full(shape []int, value float32) *Tensor {
	t := NewTensor(shape)
	for i := range t.Data {
		t.Data[i] = value
	}
	return t
}

// View returns a tensor with a different shape sharing the same storage.
// Returns an error if total size doesn't match.
func (t *Tensor) View(newShape []int) (*Tensor, error) {
	if err := checkShape(newShape); err != nil {
		return nil, err
	}
	if newSize := numElements(newShape); newSize != len(t.Data) {
		return nil, fmt.Errorf("cannot view tensor of size %d as shape %v (total size %d)",
			len(t.Data), newShape, newSize)
	}

	return &Tensor{
		Data:    t.Data,
		Shape:   copyShape(newShape),
		Strides: computeStrides(newShape),
	}, nil
}

// Size returns the total number of elements in the tensor.
func (t *Tensor) Size() int {
	return numElements(t.Shape)
}

// NumDims returns the rank of the tensor.
func (t *Tensor) NumDims() int {
	return len(t.Shape)
}

// Dim returns the size of axis. Negative axes count from the end.
func (t *Tensor) Dim(axis int) int {
	if axis < 0 {
		axis += len(t.Shape)
	}
	return t.Shape[axis]
}

// FlatIndex converts multi-dimensional indices to a flat index.
func (t *Tensor) FlatIndex(indices []int) int {
	if len(indices) != len(t.Shape) {
		panic(fmt.Sprintf("indices length %d does not match shape dimensions %d",
			len(indices), len(t.Shape)))
	}

	idx := 0
	for i, v := range indices {
		if v < 0 || v >= t.Shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d with size %d",
				v, i, t.Shape[i]))
		}
		idx += v * t.Strides[i]
	}
	return idx
}

// Get retrieves a value at the specified indices.
func (t *Tensor) Get(indices []int) float32 {
	return t.Data[t.FlatIndex(indices)]
}

// Set sets a value at the specified indices.
func (t *Tensor) Set(indices []int, value float32) {
	t.Data[t.FlatIndex(indices)] = value
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := NewTensor(t.Shape)
	copy(out.Data, t.Data)
	return out
}

// ShapeEquals checks if two tensors have the same shape.
func (t *Tensor) ShapeEquals(other *Tensor) bool {
	return sameShape(t.Shape, other.Shape)
}

// Equals checks if two tensors have the same shape and approximately equal values.
func (t *Tensor) Equals(other *Tensor, tolerance float32) bool {
	if !t.ShapeEquals(other) {
		return false
	}
	for i := range t.Data {
		if math.Abs(float64(t.Data[i]-other.Data[i])) > float64(tolerance) {
			return false
		}
	}
	return true
}

// Map returns a new tensor with fn applied to every element.
func (t *Tensor) Map(fn func(float32) float32) *Tensor {
	out := NewTensor(t.Shape)
	for i, v := range t.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// Matmul multiplies over the last two dimensions.
//
// Supported operand ranks:
//   - (m, n) @ (n, p) -> (m, p)
//   - (batch, m, n) @ (n, p) -> (batch, m, p), the dense-layer case
//   - (..., m, n) @ (..., n, p) with identical leading dimensions
func Matmul(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) < 2 || len(b.Shape) < 2 {
		return nil, fmt.Errorf("matmul requires at least 2D tensors, got %dD and %dD",
			len(a.Shape), len(b.Shape))
	}

	n := a.Shape[len(a.Shape)-1]
	if kb := b.Shape[len(b.Shape)-2]; n != kb {
		return nil, fmt.Errorf("incompatible shapes for matmul: %v and %v (inner dimensions %d and %d don't match)",
			a.Shape, b.Shape, n, kb)
	}

	if len(b.Shape) == 2 {
		// Fold every leading axis of a into the row count.
		m := a.Size() / n
		p := b.Shape[1]
		outShape := append(copyShape(a.Shape[:len(a.Shape)-1]), p)
		result := NewTensor(outShape)
		matmulInto(result.Data, a.Data, b.Data, m, n, p)
		return result, nil
	}

	if len(a.Shape) != len(b.Shape) || !sameShape(a.Shape[:len(a.Shape)-2], b.Shape[:len(b.Shape)-2]) {
		return nil, fmt.Errorf("incompatible batch dimensions for matmul: %v and %v", a.Shape, b.Shape)
	}

	m := a.Shape[len(a.Shape)-2]
	p := b.Shape[len(b.Shape)-1]
	batchSize := a.Size() / (m * n)

	outShape := append(copyShape(a.Shape[:len(a.Shape)-2]), m, p)
	result := NewTensor(outShape)
	for bi := 0; bi < batchSize; bi++ {
		matmulInto(
			result.Data[bi*m*p:(bi+1)*m*p],
			a.Data[bi*m*n:(bi+1)*m*n],
			b.Data[bi*n*p:(bi+1)*n*p],
			m, n, p,
		)
	}
	return result, nil
}

// matmulInto computes dst(m,p) = a(m,n) @ b(n,p).
func matmulInto(dst, a, b []float32, m, n, p int) {
	for i := 0; i < m; i++ {
		for k := 0; k < p; k++ {
			sum := float32(0)
			for j := 0; j < n; j++ {
				sum += a[i*n+j] * b[j*p+k]
			}
			dst[i*p+k] = sum
		}
	}
}

// AddBias adds a rank-1 bias along the last axis of t.
func AddBias(t, bias *Tensor) (*Tensor, error) {
	if len(bias.Shape) != 1 {
		return nil, fmt.Errorf("bias must be 1D, got shape %v", bias.Shape)
	}
	if len(t.Shape) == 0 || t.Shape[len(t.Shape)-1] != bias.Shape[0] {
		return nil, fmt.Errorf("cannot add bias of shape %v to tensor of shape %v", bias.Shape, t.Shape)
	}

	width := bias.Shape[0]
	result := NewTensor(t.Shape)
	for i, v := range t.Data {
		result.Data[i] = v + bias.Data[i%width]
	}
	return result, nil
}

// String returns a string representation of the tensor.
func (t *Tensor) String() string {
	var sb strings.Builder
	sb.WriteString("Tensor")
	sb.WriteString(fmt.Sprint(t.Shape))
	sb.WriteString(": ")
	sb.WriteString(formatData(t.Shape, t.Data, 0))
	return sb.String()
}

// formatData recursively formats tensor data, eliding long axes.
func formatData(shape []int, data []float32, offset int) string {
	if len(shape) == 0 {
		return fmt.Sprintf("%g", data[offset])
	}

	var sb strings.Builder
	sb.WriteString("[")
	if len(shape) == 1 {
		for i := 0; i < shape[0] && i < 8; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%g", data[offset+i]))
		}
		if shape[0] > 8 {
			sb.WriteString(", ...")
		}
		sb.WriteString("]")
		return sb.String()
	}

	subSize := numElements(shape[1:])
	for i := 0; i < shape[0] && i < 4; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatData(shape[1:], data, offset+i*subSize))
	}
	if shape[0] > 4 {
		sb.WriteString(", ...")
	}
	sb.WriteString("]")
	return sb.String()
}

func checkShape(shape []int) error {
	for _, dim := range shape {
		if dim < 0 {
			return fmt.Errorf("invalid dimension %d in shape %v", dim, shape)
		}
	}
	return nil
}

func numElements(shape []int) int {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return size
}

func computeStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// copyShape creates a copy of a shape slice
func copyShape(shape []int) []int {
	result := make([]int, len(shape))
	copy(result, shape)
	return result
}
