package detect

import (
	"strings"

	"github.com/echo-project/crisis-engine/internal/database"
)

// FeatureDim is the width of the surrogate feature vector.
const FeatureDim = 7

// Features converts a report into a fixed-length numeric vector.
//
// This is an explicit placeholder for a semantic embedding: it captures
// surface statistics of the text (length, punctuation, priority, category
// count, negative sentiment), not meaning. Anything replacing it must be
// documented as a model change, not a refactor.
func Features(r *database.Report) []float64 {
	priority := r.Priority
	if priority < 1 {
		priority = 1
	}
	negative := 0.0
	if r.SentimentLabel == database.SentimentNegative {
		negative = 1.0
	}
	return []float64{
		float64(len(r.Text)),
		float64(len(strings.Fields(r.Text))),
		float64(strings.Count(r.Text, "!")),
		float64(strings.Count(r.Text, "?")),
		float64(priority),
		float64(len(r.Categories)),
		negative,
	}
}

// FeatureMatrix vectorizes a whole batch, preserving input order
func FeatureMatrix(reports []database.Report) [][]float64 {
	matrix := make([][]float64, len(reports))
	for i := range reports {
		matrix[i] = Features(&reports[i])
	}
	return matrix
}
