package detect

import (
	"strings"
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
)

// The five-level ordinal severity scale
var severityLabels = map[int]string{
	1: "Information",  // no immediate action required
	2: "Attention",    // situation to watch
	3: "Intervention", // action needed, not critical
	4: "Urgence",      // urgent, fast response required
	5: "Critique",     // immediate danger
}

// SeverityLabel returns the label for a severity level, clamping out-of-range
// values to the scale.
func SeverityLabel(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return severityLabels[level]
}

// emergencyKeywords are matched case-insensitively against report texts
var emergencyKeywords = []string{
	"urgent", "danger", "immédiat", "secours", "blessé", "feu", "accident",
}

// Factor weights, summing to 1.0
var severityWeights = map[string]float64{
	"num_reports":        0.15,
	"avg_priority":       0.30,
	"recency":            0.20,
	"negative_sentiment": 0.15,
	"emergency_keywords": 0.20,
}

// SeverityScorer computes a 1-5 severity level from a set of reports
// belonging to one candidate incident. The clock is injectable so the
// recency factor is testable.
type SeverityScorer struct {
	Now func() time.Time
}

// NewSeverityScorer creates a scorer using the wall clock
func NewSeverityScorer() *SeverityScorer {
	return &SeverityScorer{Now: time.Now}
}

// Score returns the severity level in [1,5] and its label. An empty set
// scores the floor of the scale.
func (s *SeverityScorer) Score(reports []database.Report) (int, string) {
	if len(reports) == 0 {
		return 1, SeverityLabel(1)
	}

	n := float64(len(reports))
	factors := make(map[string]float64, len(severityWeights))

	// Volume, capped: two reports already count as a full signal.
	factors["num_reports"] = clamp01(n / 2)

	prioritySum := 0.0
	negatives := 0.0
	keywordHits := 0.0
	ageHoursSum := 0.0
	now := s.Now()

	for _, r := range reports {
		priority := r.Priority
		if priority < 1 {
			priority = 1
		}
		prioritySum += float64(priority)

		if r.SentimentLabel == database.SentimentNegative {
			negatives++
		}

		text := strings.ToLower(r.Text)
		for _, keyword := range emergencyKeywords {
			if strings.Contains(text, keyword) {
				keywordHits++
			}
		}

		ageHoursSum += now.Sub(r.ReportedAt).Hours()
	}

	factors["avg_priority"] = clamp01(prioritySum / n / 5)
	factors["negative_sentiment"] = clamp01(negatives / n)
	// Keyword density, capped at two hits per report.
	factors["emergency_keywords"] = clamp01(keywordHits / (n * 2))
	// 1 for just-filed reports, 0 for anything older than a day on average.
	factors["recency"] = clamp01(1 - (ageHoursSum/n)/24)

	score := 0.0
	for name, weight := range severityWeights {
		score += factors[name] * weight
	}

	// score is in [0,1], so the level lands in [1,5] by construction.
	level := int(1 + score*4)
	if level > 5 {
		level = 5
	}
	return level, SeverityLabel(level)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
