package model

import (
	"math"
	"math/rand"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// xavierUniformInit fills a weight matrix from U[-limit, limit] with
// limit = sqrt(6 / (fan_in + fan_out)), fan_in and fan_out being the last
// two dimensions.
func xavierUniformInit(t *tensor.Tensor, rng *rand.Rand) {
	if len(t.Shape) < 2 {
		for i := range t.Data {
			t.Data[i] = float32(rng.Float64()*2 - 1)
		}
		return
	}

	fanIn := t.Shape[len(t.Shape)-2]
	fanOut := t.Shape[len(t.Shape)-1]
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))

	for i := range t.Data {
		t.Data[i] = float32(rng.Float64()*2*limit - limit)
	}
}
