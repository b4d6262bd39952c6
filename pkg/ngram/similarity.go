package ngram

// Jaccard returns |a ∩ b| / |a ∪ b| for two n-gram sets. When either set
// is empty the result is 0.0 by convention, never NaN. The result is
// always in [0, 1].
func Jaccard(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	intersection := 0
	for g := range small {
		if large.Contains(g) {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// StringSimilarity returns the Jaccard similarity of the n-gram sets of two
// strings for the given kind and n-gram size.
func StringSimilarity(s1, s2 string, kind Kind, n int) float64 {
	return Jaccard(Generate(s1, kind, n), Generate(s2, kind, n))
}
