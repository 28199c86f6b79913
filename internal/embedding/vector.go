// Package embedding holds helpers shared by the embedder implementations.
package embedding

import "math"

// Normalize scales vec to unit length in place and returns it. Vectors in
// the collection are stored normalised so cosine distances compare cleanly
// across backends. A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}
	for i, v := range vec {
		vec[i] = float32(float64(v) / magnitude)
	}
	return vec
}
