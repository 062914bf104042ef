// Package taxonomy holds the declarative registry of structural labels a
// market-research survey is expected to carry. The registry is loaded once
// from a YAML table (embedded default, swappable via file) and is immutable
// afterwards, so it can be shared across concurrent validations.
package taxonomy

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
)

//go:embed labels.yaml
var labelsFS embed.FS

// Category is a structural zone of the survey.
type Category string

const (
	CategoryScreening   Category = "screening"
	CategoryBrand       Category = "brand"
	CategoryConcept     Category = "concept"
	CategoryMethodology Category = "methodology"
	CategoryAdditional  Category = "additional"
)

// The four canonical Van Westendorp price anchors. The methodology check is
// structural (exactly four present), not a simple presence check, so the
// literals live here as the single source of truth.
const (
	VWTooCheap     = "VW_Price_TooCheap"
	VWBargain      = "VW_Price_Bargain"
	VWExpensive    = "VW_Price_Expensive"
	VWTooExpensive = "VW_Price_TooExpensive"
)

// VanWestendorpLabels lists the four anchors in canonical order.
var VanWestendorpLabels = []string{VWTooCheap, VWBargain, VWExpensive, VWTooExpensive}

// GaborGrangerAcceptance is the price-acceptance question label required by
// the Gabor-Granger methodology.
const GaborGrangerAcceptance = "GG_Price_Acceptance"

// criticalLabels are always severity critical when missing, regardless of
// general mandatory status.
var criticalLabels = []string{
	"Screening_Criteria",
	"Demographics_Basic",
	"Purchase_Intent",
}

// recoverableMandatory are structurally mandatory but recoverable: their
// absence is an error, not a critical failure.
var recoverableMandatory = []string{
	"Brand_Awareness_Funnel",
	"Product_Satisfaction",
}

// DetectionRule is the declarative pattern attached to a label. Every
// criterion present on the rule must hold for a match; absent criteria are
// skipped. The rule is data, not code, so the table can be unit-tested and
// extended without touching the matching engine.
type DetectionRule struct {
	Keywords         []string          `yaml:"keywords"`
	NegativeKeywords []string          `yaml:"negative_keywords"`
	ItemTypes        []survey.ItemType `yaml:"item_types"`
	ContextTerms     []string          `yaml:"context_terms"`
	MinOptions       int               `yaml:"min_options"`
}

// LabelDefinition is one row of the taxonomy table.
type LabelDefinition struct {
	Name        string        `yaml:"name"`
	Category    Category      `yaml:"category"`
	Description string        `yaml:"description"`
	Mandatory   bool          `yaml:"mandatory"`
	AppliesTo   []string      `yaml:"applies_to"`
	Detection   DetectionRule `yaml:"detection"`
}

// AppliesToContext reports whether the definition is applicable given the
// caller's methodology tags and industry. An empty applies_to list means the
// label is universally applicable.
func (d LabelDefinition) AppliesToContext(methodologies []string, industry string) bool {
	if len(d.AppliesTo) == 0 {
		return true
	}
	for _, ctx := range d.AppliesTo {
		ctx = strings.ToLower(strings.TrimSpace(ctx))
		if ctx == "" {
			continue
		}
		if strings.EqualFold(ctx, industry) {
			return true
		}
		for _, m := range methodologies {
			if strings.EqualFold(ctx, m) {
				return true
			}
		}
	}
	return false
}

type labelsFile struct {
	Labels []LabelDefinition `yaml:"labels"`
}

// Registry is the immutable label registry.
type Registry struct {
	defs   []LabelDefinition
	byName map[string]LabelDefinition
}

// Load builds a registry from the embedded default table.
func Load() (*Registry, error) {
	raw, err := labelsFS.ReadFile("labels.yaml")
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

// LoadFile builds a registry from an external YAML table with the same shape
// as the embedded default.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

func parse(raw []byte) (*Registry, error) {
	var file labelsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing label taxonomy: %w", err)
	}
	if len(file.Labels) == 0 {
		return nil, fmt.Errorf("label taxonomy is empty")
	}

	byName := make(map[string]LabelDefinition, len(file.Labels))
	for _, def := range file.Labels {
		if def.Name == "" {
			return nil, fmt.Errorf("label taxonomy row missing name")
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate label %q in taxonomy", def.Name)
		}
		switch def.Category {
		case CategoryScreening, CategoryBrand, CategoryConcept, CategoryMethodology, CategoryAdditional:
		default:
			return nil, fmt.Errorf("label %q has unknown category %q", def.Name, def.Category)
		}
		byName[def.Name] = def
	}
	return &Registry{defs: file.Labels, byName: byName}, nil
}

// Definitions returns every row of the table in declaration order.
func (r *Registry) Definitions() []LabelDefinition {
	return append([]LabelDefinition(nil), r.defs...)
}

// Lookup returns the definition for a label name.
func (r *Registry) Lookup(name string) (LabelDefinition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// ZoneForSection maps a section id onto its structural zone. Section 1 is the
// reserved plan section and has no zone.
func ZoneForSection(id int) (Category, bool) {
	switch id {
	case survey.PlanSectionID:
		return "", false
	case 2:
		return CategoryScreening, true
	case 3:
		return CategoryBrand, true
	case 4:
		return CategoryConcept, true
	case 5:
		return CategoryMethodology, true
	default:
		return CategoryAdditional, true
	}
}

// RequiredLabels returns the mandatory definitions applicable to a section
// under the given methodology/industry context. The reserved plan section has
// no required labels: it is validated structurally instead.
func (r *Registry) RequiredLabels(sectionID int, methodologies []string, industry string) []LabelDefinition {
	zone, ok := ZoneForSection(sectionID)
	if !ok {
		return nil
	}
	var out []LabelDefinition
	for _, def := range r.defs {
		if !def.Mandatory || def.Category != zone {
			continue
		}
		if !def.AppliesToContext(methodologies, industry) {
			continue
		}
		out = append(out, def)
	}
	return out
}

// CriticalLabels returns the fixed set of labels whose absence is always
// severity critical.
func CriticalLabels() []string {
	return append([]string(nil), criticalLabels...)
}

// IsCritical reports membership in the critical set.
func IsCritical(name string) bool {
	for _, c := range criticalLabels {
		if c == name {
			return true
		}
	}
	return false
}

// IsRecoverableMandatory reports membership in the structurally mandatory but
// recoverable set.
func IsRecoverableMandatory(name string) bool {
	for _, c := range recoverableMandatory {
		if c == name {
			return true
		}
	}
	return false
}

// IsVanWestendorpAnchor reports whether a label is one of the four canonical
// price anchors.
func IsVanWestendorpAnchor(name string) bool {
	for _, c := range VanWestendorpLabels {
		if c == name {
			return true
		}
	}
	return false
}
