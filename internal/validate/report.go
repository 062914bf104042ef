package validate

// Severity classifies a validation issue. Severities are ordinal: info <
// warning < error < critical; the overall score penalty follows the same
// ordering.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Issue is one advisory finding. Issues never block downstream processing.
type Issue struct {
	Severity   Severity `json:"severity"`
	SectionID  int      `json:"section_id,omitempty"`
	Label      string   `json:"label"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Report is the immutable output of a validation run.
type Report struct {
	OverallScore    float64            `json:"overall_score"`
	Summary         string             `json:"summary"`
	Issues          []Issue            `json:"issues"`
	SectionScores   map[int]float64    `json:"section_scores"`
	DetectedLabels  map[int][]string   `json:"detected_labels"`
	MissingRequired map[int][]string   `json:"missing_required_labels"`
}

// Score bands and their fixed display strings. Callers decide independently
// what "high quality" means; no band ever blocks processing.
const (
	SummaryExcellent  = "Excellent structural quality"
	SummaryGood       = "Good structural quality"
	SummaryAcceptable = "Acceptable structural quality"
	SummaryPoor       = "Poor structural quality"
)

// SummaryForScore maps an overall score onto its display band.
func SummaryForScore(score float64) string {
	switch {
	case score >= 0.90:
		return SummaryExcellent
	case score >= 0.75:
		return SummaryGood
	case score >= 0.60:
		return SummaryAcceptable
	default:
		return SummaryPoor
	}
}

func (r *Report) countBySeverity() (critical, errs, warnings int) {
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityCritical:
			critical++
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		}
	}
	return
}
