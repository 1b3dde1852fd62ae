package testutil

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
)

// DeterministicSine returns a batch×length matrix of sine waves whose
// frequency rises with the row index.
func DeterministicSine(batch, length int, amplitude float64) *mat.Dense {
	out := mat.NewDense(batch, length, nil)
	for i := 0; i < batch; i++ {
		step := 2 * math.Pi * float64(i+1) / 64
		for j := 0; j < length; j++ {
			out.Set(i, j, amplitude*math.Sin(step*float64(j)))
		}
	}
	return out
}

// DeterministicNoise returns a rows×cols matrix of uniform noise in
// [-amplitude, amplitude] generated from seed.
func DeterministicNoise(seed int64, amplitude float64, rows, cols int) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return mat.NewDense(rows, cols, data)
}

// Features returns a deterministic feature batch of batch mels×frames
// matrices.
func Features(seed int64, batch, mels, frames int) diffusion.Features {
	out := make(diffusion.Features, batch)
	for i := range out {
		out[i] = DeterministicNoise(seed+int64(i), 1, mels, frames)
	}
	return out
}
