package detect

import (
	"log"

	"github.com/echo-project/crisis-engine/internal/database"
)

// Outlier detection defaults, matching the tuned production values
const (
	DefaultMinSamples    = 10
	DefaultContamination = 0.1 // fraction of a batch expected to be anomalous
	DefaultNumTrees      = 100
	DefaultSeed          = 42
)

// OutlierDetector flags statistically anomalous reports within a batch.
// A fresh model is fit on every call; the detector carries no state
// between batches.
type OutlierDetector struct {
	MinSamples    int
	Contamination float64
	NumTrees      int
	Seed          int64
}

// NewOutlierDetector creates a detector with the default parameters
func NewOutlierDetector() *OutlierDetector {
	return &OutlierDetector{
		MinSamples:    DefaultMinSamples,
		Contamination: DefaultContamination,
		NumTrees:      DefaultNumTrees,
		Seed:          DefaultSeed,
	}
}

// Detect returns the anomalous subset of the batch, preserving input order.
// Batches below MinSamples are too small to fit a model; the fallback
// returns every priority >= 4 report instead, which is a coverage choice,
// not a statistical judgment.
func (d *OutlierDetector) Detect(reports []database.Report) []database.Report {
	if len(reports) == 0 {
		return nil
	}

	if len(reports) < d.MinSamples {
		log.Printf("OutlierDetector: too few samples for model fit (%d < %d), falling back to high-priority reports", len(reports), d.MinSamples)
		var highPriority []database.Report
		for _, r := range reports {
			if r.Priority >= 4 {
				highPriority = append(highPriority, r)
			}
		}
		return highPriority
	}

	matrix := FeatureMatrix(reports)
	forest := fitForest(matrix, d.NumTrees, d.Seed)
	labels := forest.predict(matrix, d.Contamination)

	var anomalies []database.Report
	for i, isOutlier := range labels {
		if isOutlier {
			anomalies = append(anomalies, reports[i])
		}
	}

	log.Printf("OutlierDetector: flagged %d anomalies among %d reports", len(anomalies), len(reports))
	return anomalies
}
