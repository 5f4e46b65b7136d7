package memory

import (
	"encoding/binary"
	"encoding/json"
	"math"
)

// PackEmbedding serializes a float32 vector as little-endian bytes. Both
// the VKC's Redis hashes and the relational store's bytea column use this
// as the canonical on-the-wire format, so a memory round-trips through
// login/logout byte-for-byte (spec.md §8).
func PackEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// UnpackEmbedding is the inverse of PackEmbedding.
func UnpackEmbedding(b []byte) []float32 {
	n := len(b) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec
}

// NormalizeEmbedding converts an embedding received in any of the shapes
// the relational store may hand back at login into the canonical
// []float32 of length EmbeddingDim: a plain []float32, a []float64 (from
// JSON unmarshaling), already-packed bytes, a []any of numbers, or a JSON
// array encoded as a string (spec.md §4.6: "embeddings may arrive as JSON
// strings, lists, or binary"). Any other shape, or a string that is not a
// JSON number array, yields a zero vector of length EmbeddingDim.
func NormalizeEmbedding(v any) []float32 {
	switch t := v.(type) {
	case []float32:
		return t
	case []float64:
		out := make([]float32, len(t))
		for i, f := range t {
			out[i] = float32(f)
		}
		return out
	case []byte:
		return UnpackEmbedding(t)
	case []any:
		out := make([]float32, len(t))
		for i, f := range t {
			if fv, ok := f.(float64); ok {
				out[i] = float32(fv)
			}
		}
		return out
	case string:
		var out []float32
		if err := json.Unmarshal([]byte(t), &out); err == nil {
			return out
		}
		return make([]float32, EmbeddingDim)
	default:
		return make([]float32, EmbeddingDim)
	}
}
