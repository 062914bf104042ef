// Package validate scores a normalized survey document against the label
// taxonomy and methodology-specific shape rules. The output is advisory: a
// validation failure can never abort generation, so Validate converts any
// internal failure into a single warning issue with a neutral score.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/detect"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/taxonomy"
)

// Penalty weights applied to the mean section score.
const (
	criticalPenalty = 0.15
	errorPenalty    = 0.05
	warningPenalty  = 0.02
)

// Context carries the research design the document is validated under.
type Context struct {
	Methodologies []string
	Industry      string
}

// Validator is a pure computation over an immutable registry; one instance
// may validate many documents concurrently.
type Validator struct {
	reg *taxonomy.Registry
	det *detect.Detector
}

// New builds a validator over a loaded taxonomy.
func New(reg *taxonomy.Registry) *Validator {
	return &Validator{reg: reg, det: detect.New(reg)}
}

// Validate produces a structure report for a document. It never fails: an
// internal panic degrades to a warning issue and a neutral 0.5 score.
func (v *Validator) Validate(doc *survey.Document, ctx Context) (report *Report) {
	defer func() {
		if r := recover(); r != nil {
			report = neutralReport(fmt.Sprintf("internal validation failure: %v", r))
		}
	}()

	report = &Report{
		SectionScores:   make(map[int]float64),
		DetectedLabels:  make(map[int][]string),
		MissingRequired: make(map[int][]string),
	}
	if doc == nil {
		doc = &survey.Document{}
	}

	report.DetectedLabels = v.det.DetectInDocument(doc)

	for _, s := range doc.Sections {
		if s.ID == survey.PlanSectionID {
			report.SectionScores[s.ID] = v.checkSamplePlan(report, s)
			continue
		}
		report.SectionScores[s.ID] = v.checkRequiredLabels(report, s, ctx)
	}

	v.checkVanWestendorp(report, doc, ctx)
	v.checkGaborGranger(report, doc, ctx)
	v.checkSatisfactionScales(report, doc)
	v.checkFunnelShape(report, doc)
	v.checkPositioningLanguage(report, doc)

	report.OverallScore = overallScore(report)
	report.Summary = SummaryForScore(report.OverallScore)
	return report
}

func neutralReport(message string) *Report {
	r := &Report{
		OverallScore:    0.5,
		Summary:         SummaryForScore(0.5),
		Issues:          []Issue{{Severity: SeverityWarning, Label: "validator_internal", Message: message}},
		SectionScores:   map[int]float64{},
		DetectedLabels:  map[int][]string{},
		MissingRequired: map[int][]string{},
	}
	return r
}

// checkRequiredLabels runs the generic presence check for one section and
// returns its score.
func (v *Validator) checkRequiredLabels(report *Report, s survey.Section, ctx Context) float64 {
	required := v.reg.RequiredLabels(s.ID, ctx.Methodologies, ctx.Industry)
	if len(required) == 0 {
		return 1.0
	}

	present := make(map[string]bool)
	for _, label := range report.DetectedLabels[s.ID] {
		present[label] = true
	}

	var missing []string
	for _, def := range required {
		if present[def.Name] {
			continue
		}
		missing = append(missing, def.Name)
		report.Issues = append(report.Issues, Issue{
			Severity:   missingSeverity(def.Name),
			SectionID:  s.ID,
			Label:      def.Name,
			Message:    fmt.Sprintf("section %q is missing a %s question", s.Title, def.Description),
			Suggestion: fmt.Sprintf("add a question covering %s", def.Name),
		})
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		report.MissingRequired[s.ID] = missing
	}
	return 1.0 - float64(len(missing))/float64(len(required))
}

// missingSeverity implements the severity ladder for an absent required
// label.
func missingSeverity(name string) Severity {
	switch {
	case taxonomy.IsCritical(name):
		return SeverityCritical
	case taxonomy.IsVanWestendorpAnchor(name):
		return SeverityError
	case taxonomy.IsRecoverableMandatory(name):
		return SeverityError
	default:
		return SeverityWarning
	}
}

// checkSamplePlan validates the reserved plan section structurally instead of
// via labels: it must carry a sampling-plan payload, not questions.
func (v *Validator) checkSamplePlan(report *Report, s survey.Section) float64 {
	if s.SamplePlan == nil {
		report.Issues = append(report.Issues, Issue{
			Severity:   SeverityError,
			SectionID:  s.ID,
			Label:      "sample_plan",
			Message:    "plan section carries no sampling plan payload",
			Suggestion: "add a sample_plan with an overall sample size and demographic breakdowns",
		})
		return 0.0
	}

	score := 1.0
	if s.SamplePlan.SampleSize <= 0 {
		score = 0.5
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityWarning,
			SectionID: s.ID,
			Label:     "sample_plan.sample_size",
			Message:   "sampling plan has no overall sample size",
		})
	}
	if len(s.SamplePlan.Demographics) == 0 {
		score = 0.5
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityWarning,
			SectionID: s.ID,
			Label:     "sample_plan.demographics",
			Message:   "sampling plan has no demographic breakdowns",
		})
	}
	return score
}

// checkVanWestendorp enforces the structural completeness of the four price
// anchors: all four must be present in the methodology section. The check can
// only lower the section score.
func (v *Validator) checkVanWestendorp(report *Report, doc *survey.Document, ctx Context) {
	if !hasMethodology(ctx, "van_westendorp") {
		return
	}
	sectionID, detected := v.methodologyLabels(report, doc)

	present := 0
	var absent []string
	for _, anchor := range taxonomy.VanWestendorpLabels {
		if detected[anchor] {
			present++
		} else {
			absent = append(absent, anchor)
		}
	}
	subScore := float64(present) / float64(len(taxonomy.VanWestendorpLabels))
	if present == len(taxonomy.VanWestendorpLabels) {
		return
	}

	report.Issues = append(report.Issues, Issue{
		Severity:   SeverityCritical,
		SectionID:  sectionID,
		Label:      "van_westendorp",
		Message:    fmt.Sprintf("Van Westendorp requires all four price anchors; missing %s", strings.Join(absent, ", ")),
		Suggestion: "add the missing open numeric price questions",
	})
	lowerSectionScore(report, sectionID, subScore)
}

// checkGaborGranger requires the price-acceptance question when the
// methodology is in play.
func (v *Validator) checkGaborGranger(report *Report, doc *survey.Document, ctx Context) {
	if !hasMethodology(ctx, "gabor_granger") {
		return
	}
	sectionID, detected := v.methodologyLabels(report, doc)
	if detected[taxonomy.GaborGrangerAcceptance] {
		return
	}
	report.Issues = append(report.Issues, Issue{
		Severity:   SeverityError,
		SectionID:  sectionID,
		Label:      taxonomy.GaborGrangerAcceptance,
		Message:    "Gabor-Granger requires a purchase acceptance question at stated price points",
		Suggestion: "add a would-you-purchase-at-this-price question",
	})
	lowerSectionScore(report, sectionID, 0)
}

// checkSatisfactionScales requires satisfaction questions to use a 1-5 scale
// with five named anchors.
func (v *Validator) checkSatisfactionScales(report *Report, doc *survey.Document) {
	for _, s := range doc.Sections {
		for _, item := range s.Items {
			if !itemHasLabel(v.det, item, "Product_Satisfaction") {
				continue
			}
			if item.Type == survey.Scale && len(item.Options) == 5 {
				continue
			}
			report.Issues = append(report.Issues, Issue{
				Severity:   SeverityError,
				SectionID:  s.ID,
				Label:      "Product_Satisfaction",
				Message:    fmt.Sprintf("satisfaction question %q must be a 1-5 scale with five named anchors", item.ID),
				Suggestion: "use a five-point scale from very dissatisfied to very satisfied",
			})
		}
	}
}

// checkFunnelShape requires awareness-funnel questions to be rendered as a
// matrix with at least three named progression stages among the options.
func (v *Validator) checkFunnelShape(report *Report, doc *survey.Document) {
	stages := []string{"aware", "familiar", "consider", "tried", "purchase", "regular", "recommend"}
	for _, s := range doc.Sections {
		for _, item := range s.Items {
			if !itemHasLabel(v.det, item, "Brand_Awareness_Funnel") {
				continue
			}
			if item.Type != survey.Matrix && item.Type != survey.MatrixLikert {
				report.Issues = append(report.Issues, Issue{
					Severity:  SeverityError,
					SectionID: s.ID,
					Label:     "Brand_Awareness_Funnel",
					Message:   fmt.Sprintf("awareness funnel question %q must be rendered as a matrix", item.ID),
				})
				continue
			}
			named := 0
			opts := strings.ToLower(strings.Join(item.Options, " "))
			for _, stage := range stages {
				if strings.Contains(opts, stage) {
					named++
				}
			}
			if named < 3 {
				report.Issues = append(report.Issues, Issue{
					Severity:   SeverityWarning,
					SectionID:  s.ID,
					Label:      "Brand_Awareness_Funnel",
					Message:    fmt.Sprintf("awareness funnel question %q names only %d progression stages", item.ID, named),
					Suggestion: "cover at least awareness, consideration and purchase stages",
				})
			}
		}
	}
}

// checkPositioningLanguage flags positioning content inside the methodology
// section. Such content is only legitimate when sourced from user-authored
// sections, never generated ones.
func (v *Validator) checkPositioningLanguage(report *Report, doc *survey.Document) {
	phrases := []string{"positioning statement", "value proposition", "brand promise", "tagline"}
	for _, s := range doc.Sections {
		if zone, ok := taxonomy.ZoneForSection(s.ID); !ok || zone != taxonomy.CategoryMethodology {
			continue
		}
		for _, item := range s.Items {
			lower := strings.ToLower(item.Text)
			for _, phrase := range phrases {
				if strings.Contains(lower, phrase) {
					report.Issues = append(report.Issues, Issue{
						Severity:   SeverityWarning,
						SectionID:  s.ID,
						Label:      "positioning_language",
						Message:    fmt.Sprintf("question %q carries positioning language inside the methodology section", item.ID),
						Suggestion: "move positioning content into a user-authored section",
					})
					break
				}
			}
		}
	}
}

// methodologyLabels returns the id of the methodology section and the set of
// labels detected there. When no methodology-zone section exists the union of
// all detected labels is used so that a consolidated document is not
// penalized for its shape alone.
func (v *Validator) methodologyLabels(report *Report, doc *survey.Document) (int, map[string]bool) {
	for _, s := range doc.Sections {
		zone, ok := taxonomy.ZoneForSection(s.ID)
		if ok && zone == taxonomy.CategoryMethodology {
			return s.ID, labelSet(report.DetectedLabels[s.ID])
		}
	}
	union := make(map[string]bool)
	for _, labels := range report.DetectedLabels {
		for _, label := range labels {
			union[label] = true
		}
	}
	return 0, union
}

func labelSet(labels []string) map[string]bool {
	out := make(map[string]bool, len(labels))
	for _, l := range labels {
		out[l] = true
	}
	return out
}

func itemHasLabel(d *detect.Detector, item survey.Item, label string) bool {
	for _, l := range d.DetectItem(item) {
		if l == label {
			return true
		}
	}
	return false
}

func lowerSectionScore(report *Report, sectionID int, score float64) {
	if sectionID == 0 {
		return
	}
	if current, ok := report.SectionScores[sectionID]; !ok || score < current {
		report.SectionScores[sectionID] = score
	}
}

func overallScore(report *Report) float64 {
	mean := 0.0
	if len(report.SectionScores) > 0 {
		sum := 0.0
		for _, s := range report.SectionScores {
			sum += s
		}
		mean = sum / float64(len(report.SectionScores))
	}
	critical, errs, warnings := report.countBySeverity()
	penalty := criticalPenalty*float64(critical) + errorPenalty*float64(errs) + warningPenalty*float64(warnings)
	return clamp01(mean - penalty)
}

func hasMethodology(ctx Context, name string) bool {
	for _, m := range ctx.Methodologies {
		if strings.EqualFold(strings.TrimSpace(m), name) {
			return true
		}
	}
	return false
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
