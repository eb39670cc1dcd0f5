package db

import (
	"encoding/binary"
	"math"
)

// TagFilter restricts a search to entries whose tag field holds Value.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Filters      []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is similarity (1 - cosine distance).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// EncodeVector renders v as little-endian FLOAT32, the layout of vector
// fields in hashes and of the FT.SEARCH BLOB parameter.
func EncodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
