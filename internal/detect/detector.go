// Package detect tags survey questions with taxonomy labels. Detection is a
// deterministic, pattern-based classification over the declarative rules in
// the taxonomy: no learned model, so the same document always yields the same
// labels and the same user-visible score.
package detect

import (
	"sort"
	"strings"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/taxonomy"
)

// Confidence criterion weights. Confidence is advisory metadata only: it
// never gates whether a label counts as detected.
const (
	keywordWeight = 0.4
	typeWeight    = 0.3
	contextWeight = 0.2
	optionWeight  = 0.1
)

// Detector classifies items and free-standing text blocks against a label
// registry.
type Detector struct {
	reg *taxonomy.Registry
}

// New builds a detector over an immutable registry. The registry may be
// shared across concurrently running detectors.
func New(reg *taxonomy.Registry) *Detector {
	return &Detector{reg: reg}
}

// DetectItem returns every label whose full criteria set the item satisfies,
// sorted by name.
func (d *Detector) DetectItem(item survey.Item) []string {
	var out []string
	for _, def := range d.reg.Definitions() {
		if matchItem(def.Detection, item) {
			out = append(out, def.Name)
		}
	}
	sort.Strings(out)
	return out
}

// DetectText classifies a free-standing text block (a section introduction or
// closing). Rules with item-type or option-count criteria cannot match plain
// text.
func (d *Detector) DetectText(text string) []string {
	var out []string
	for _, def := range d.reg.Definitions() {
		rule := def.Detection
		if len(rule.ItemTypes) > 0 || rule.MinOptions > 0 {
			continue
		}
		if matchText(rule, text) {
			out = append(out, def.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Confidence scores already-detected labels as a weighted sum of criterion
// satisfaction, clamped to [0,1]. Criteria absent from a rule contribute
// their full weight.
func (d *Detector) Confidence(item survey.Item, labels []string) map[string]float64 {
	out := make(map[string]float64, len(labels))
	haystack := itemHaystack(item)
	for _, name := range labels {
		def, ok := d.reg.Lookup(name)
		if !ok {
			continue
		}
		rule := def.Detection

		score := keywordWeight * overlapRatio(rule.Keywords, haystack)
		if len(rule.ItemTypes) == 0 || typeAllowed(rule.ItemTypes, item.Type) {
			score += typeWeight
		}
		score += contextWeight * overlapRatio(rule.ContextTerms, haystack)
		if rule.MinOptions == 0 || len(item.Options) >= rule.MinOptions {
			score += optionWeight
		}
		out[name] = clamp01(score)
	}
	return out
}

// DetectInDocument unions per-item and per-text-block labels within each
// section, keyed by section id.
func (d *Detector) DetectInDocument(doc *survey.Document) map[int][]string {
	out := make(map[int][]string)
	if doc == nil {
		return out
	}
	for _, s := range doc.Sections {
		seen := make(map[string]bool)
		for _, item := range s.Items {
			for _, label := range d.DetectItem(item) {
				seen[label] = true
			}
		}
		blocks := s.TextBlocks
		if strings.TrimSpace(s.Description) != "" {
			blocks = append(append([]string(nil), blocks...), s.Description)
		}
		for _, block := range blocks {
			for _, label := range d.DetectText(block) {
				seen[label] = true
			}
		}
		labels := make([]string, 0, len(seen))
		for label := range seen {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		out[s.ID] = labels
	}
	return out
}

// matchItem checks the conjunction of every criterion present on the rule.
func matchItem(rule taxonomy.DetectionRule, item survey.Item) bool {
	haystack := itemHaystack(item)
	if len(rule.Keywords) > 0 && !containsAny(haystack, rule.Keywords) {
		return false
	}
	if containsAny(haystack, rule.NegativeKeywords) {
		return false
	}
	if len(rule.ItemTypes) > 0 && !typeAllowed(rule.ItemTypes, item.Type) {
		return false
	}
	if len(rule.ContextTerms) > 0 && !containsAny(haystack, rule.ContextTerms) {
		return false
	}
	if rule.MinOptions > 0 && len(item.Options) < rule.MinOptions {
		return false
	}
	return true
}

func matchText(rule taxonomy.DetectionRule, text string) bool {
	haystack := strings.ToLower(text)
	if len(rule.Keywords) > 0 && !containsAny(haystack, rule.Keywords) {
		return false
	}
	if containsAny(haystack, rule.NegativeKeywords) {
		return false
	}
	if len(rule.ContextTerms) > 0 && !containsAny(haystack, rule.ContextTerms) {
		return false
	}
	return true
}

func itemHaystack(item survey.Item) string {
	parts := make([]string, 0, len(item.Options)+1)
	parts = append(parts, item.Text)
	parts = append(parts, item.Options...)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func overlapRatio(needles []string, haystack string) float64 {
	if len(needles) == 0 {
		return 1
	}
	matched := 0
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(haystack, n) {
			matched++
		}
	}
	return float64(matched) / float64(len(needles))
}

func typeAllowed(allowed []survey.ItemType, t survey.ItemType) bool {
	for _, a := range allowed {
		if a == t {
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
