package rag

import (
	"fmt"
	"math"
	"sort"

	"mentor-backend/internal/models"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical, 0 means orthogonal.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dotProduct, aMagnitude, bMagnitude float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		aMagnitude += float64(a[i]) * float64(a[i])
		bMagnitude += float64(b[i]) * float64(b[i])
	}

	if aMagnitude == 0 || bMagnitude == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(aMagnitude) * math.Sqrt(bMagnitude)), nil
}

// RankTopK returns the k chunks most similar to the query embedding, in
// descending similarity order. Chunks whose embedding cannot be compared are
// skipped. The ranking is deterministic: equal scores keep store order.
func RankTopK(query []float32, chunks []models.Chunk, k int) []models.Chunk {
	type scored struct {
		chunk models.Chunk
		score float64
	}

	ranked := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		score, err := CosineSimilarity(query, chunk.Embedding)
		if err != nil {
			continue
		}
		ranked = append(ranked, scored{chunk: chunk, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	top := make([]models.Chunk, 0, k)
	for _, s := range ranked[:k] {
		top = append(top, s.chunk)
	}
	return top
}
