package domain

// Similarity and cosine distance are interchangeable representations of
// vector closeness: similarity 1 means identical, 0 maximally dissimilar.

// SimilarityFromDistance converts a cosine distance in [0,1] to a similarity.
func SimilarityFromDistance(distance float64) float64 {
	return 1 - distance
}

// DistanceFromSimilarity converts a similarity in [0,1] to a cosine distance.
func DistanceFromSimilarity(similarity float64) float64 {
	return 1 - similarity
}
