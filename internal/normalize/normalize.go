// Package normalize converts recovered survey documents into one canonical
// shape: flat legacy question lists are wrapped in sections, singleton-section
// explosions are consolidated into theme buckets, and question ids are
// renumbered sequentially. Normalize is pure and idempotent, and conserves the
// total question count.
package normalize

import (
	"fmt"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/taxonomy"
)

// DefaultConsolidateThreshold is the number of singleton sections above which
// consolidation kicks in.
const DefaultConsolidateThreshold = 8

// LegacySectionTitle names the synthetic section wrapping a flat question list.
const LegacySectionTitle = "Survey Questions"

// Normalizer repairs document shape. The zero value is not usable; construct
// with New.
type Normalizer struct {
	threshold int
}

// New returns a normalizer with the default consolidation threshold.
func New() *Normalizer {
	return NewWithThreshold(DefaultConsolidateThreshold)
}

// NewWithThreshold overrides the consolidation threshold. Values below the
// theme bucket count are raised to it so that consolidation output is a fixed
// point of Normalize.
func NewWithThreshold(threshold int) *Normalizer {
	if min := len(taxonomy.ThemeBuckets()) + 1; threshold < min {
		threshold = min
	}
	return &Normalizer{threshold: threshold}
}

// Normalize returns the canonical form of a document. The input is never
// mutated. An empty document is returned as-is: the emptiness check belongs
// to the caller, not the normalizer.
func (n *Normalizer) Normalize(d *survey.Document) *survey.Document {
	if d == nil {
		return &survey.Document{Title: "Generated Survey"}
	}

	out := survey.Clone(d)
	n.migrateLegacyQuestions(out)
	n.consolidateSingletons(out)
	renumberItems(out)
	return out
}

// migrateLegacyQuestions buckets a flat question list into sections. Small
// lists land in a single default section; larger lists get the same thematic
// grouping consolidation uses, so the two paths cannot diverge.
func (n *Normalizer) migrateLegacyQuestions(d *survey.Document) {
	if len(d.Questions) == 0 {
		d.Questions = nil
		return
	}

	items := d.Questions
	d.Questions = nil

	if len(items) <= n.threshold {
		d.Sections = append(d.Sections, survey.Section{
			ID:    nextSectionID(d),
			Title: LegacySectionTitle,
			Items: items,
		})
		return
	}
	d.Sections = append(d.Sections, bucketItems(items, nextSectionID(d))...)
}

// consolidateSingletons merges an explosion of one-question sections into a
// bounded set of theme-named sections. Sections holding more than one
// question, and the reserved plan section, are kept untouched.
func (n *Normalizer) consolidateSingletons(d *survey.Document) {
	singletons := 0
	for _, s := range d.Sections {
		if s.ID != survey.PlanSectionID && len(s.Items) == 1 {
			singletons++
		}
	}
	if singletons <= n.threshold {
		return
	}

	kept := make([]survey.Section, 0, len(d.Sections))
	var orphans []survey.Item
	for _, s := range d.Sections {
		if s.ID == survey.PlanSectionID || len(s.Items) != 1 {
			kept = append(kept, s)
			continue
		}
		orphans = append(orphans, s.Items[0])
	}

	d.Sections = kept
	d.Sections = append(d.Sections, bucketItems(orphans, nextSectionID(d))...)
}

// bucketItems groups questions into the fixed ordered theme buckets, with a
// default bucket for questions matching no theme. Empty buckets are dropped,
// and every question lands in exactly one bucket.
func bucketItems(items []survey.Item, firstID int) []survey.Section {
	grouped := make(map[string][]survey.Item)
	for _, item := range items {
		key := taxonomy.MatchTheme(item.Category, item.Text)
		grouped[key] = append(grouped[key], item)
	}

	var out []survey.Section
	id := firstID
	for _, bucket := range taxonomy.ThemeBuckets() {
		bucketed, ok := grouped[bucket.Key]
		if !ok {
			continue
		}
		out = append(out, survey.Section{ID: id, Title: bucket.Title, Items: bucketed})
		id++
	}
	if rest, ok := grouped[""]; ok {
		out = append(out, survey.Section{ID: id, Title: taxonomy.DefaultThemeTitle, Items: rest})
	}
	return out
}

// renumberItems reassigns question ids sequentially across the whole document
// in section order. Section ids are left untouched: they encode fixed
// structural meaning.
func renumberItems(d *survey.Document) {
	seq := 0
	for si := range d.Sections {
		for ii := range d.Sections[si].Items {
			seq++
			d.Sections[si].Items[ii].ID = fmt.Sprintf("item_%d", seq)
		}
	}
}

func nextSectionID(d *survey.Document) int {
	next := 2
	for _, s := range d.Sections {
		if s.ID >= next {
			next = s.ID + 1
		}
	}
	return next
}
