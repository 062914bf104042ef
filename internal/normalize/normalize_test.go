package normalize

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
)

func item(id, text string) survey.Item {
	return survey.Item{ID: id, Text: text, Type: survey.OpenText}
}

func TestNormalize_WrapsSmallLegacyList(t *testing.T) {
	doc := &survey.Document{
		Title: "T",
		Questions: []survey.Item{
			item("a", "First question"),
			item("b", "Second question"),
		},
	}

	out := New().Normalize(doc)

	assert.Nil(t, out.Questions)
	require.Len(t, out.Sections, 1)
	sec := out.Sections[0]
	assert.Equal(t, 2, sec.ID)
	assert.Equal(t, LegacySectionTitle, sec.Title)
	require.Len(t, sec.Items, 2)
	assert.Equal(t, "item_1", sec.Items[0].ID)
	assert.Equal(t, "item_2", sec.Items[1].ID)
}

func TestNormalize_BucketsLargeLegacyList(t *testing.T) {
	var qs []survey.Item
	for i := 0; i < 5; i++ {
		qs = append(qs, item(fmt.Sprintf("d%d", i), fmt.Sprintf("What is your age bracket, variant %d?", i)))
	}
	for i := 0; i < 5; i++ {
		qs = append(qs, item(fmt.Sprintf("p%d", i), fmt.Sprintf("What price would you pay, variant %d?", i)))
	}
	doc := &survey.Document{Title: "T", Questions: qs}

	out := New().Normalize(doc)

	assert.Nil(t, out.Questions)
	require.Len(t, out.Sections, 2)
	assert.Equal(t, "Demographics & Background", out.Sections[0].Title)
	assert.Equal(t, "Pricing & Value", out.Sections[1].Title)
	assert.Len(t, out.Sections[0].Items, 5)
	assert.Len(t, out.Sections[1].Items, 5)
}

func TestNormalize_ConsolidatesSingletonExplosion(t *testing.T) {
	doc := &survey.Document{Title: "T"}
	for i := 0; i < 12; i++ {
		doc.Sections = append(doc.Sections, survey.Section{
			ID:    i + 2,
			Title: fmt.Sprintf("Question %d", i+1),
			Items: []survey.Item{item(fmt.Sprintf("q%d", i), fmt.Sprintf("What is your household income, variant %d?", i))},
		})
	}

	out := New().Normalize(doc)

	require.Len(t, out.Sections, 1)
	sec := out.Sections[0]
	assert.Equal(t, "Demographics & Background", sec.Title)
	require.Len(t, sec.Items, 12)
	for i, it := range sec.Items {
		assert.Equal(t, fmt.Sprintf("item_%d", i+1), it.ID)
	}
}

func TestNormalize_KeepsMultiItemAndPlanSections(t *testing.T) {
	doc := &survey.Document{
		Title: "T",
		Sections: []survey.Section{
			{ID: survey.PlanSectionID, Title: "Sample Plan", SamplePlan: &survey.SamplePlan{SampleSize: 400}},
			{ID: 2, Title: "Screener", Items: []survey.Item{item("a", "Age?"), item("b", "Region?")}},
		},
	}
	for i := 0; i < 10; i++ {
		doc.Sections = append(doc.Sections, survey.Section{
			ID:    i + 3,
			Title: fmt.Sprintf("Extra %d", i),
			Items: []survey.Item{item(fmt.Sprintf("x%d", i), fmt.Sprintf("Any other feedback, round %d?", i))},
		})
	}

	out := New().Normalize(doc)

	require.Len(t, out.Sections, 3)
	assert.Equal(t, survey.PlanSectionID, out.Sections[0].ID)
	require.NotNil(t, out.Sections[0].SamplePlan)
	assert.Equal(t, 400, out.Sections[0].SamplePlan.SampleSize)
	assert.Equal(t, "Screener", out.Sections[1].Title)
	assert.Equal(t, "Open Feedback", out.Sections[2].Title)
	assert.Len(t, out.Sections[2].Items, 10)
}

func TestNormalize_BelowThresholdUntouched(t *testing.T) {
	doc := &survey.Document{Title: "T"}
	for i := 0; i < 8; i++ {
		doc.Sections = append(doc.Sections, survey.Section{
			ID:    i + 2,
			Title: fmt.Sprintf("S%d", i),
			Items: []survey.Item{item(fmt.Sprintf("q%d", i), "Anything else?")},
		})
	}

	out := New().Normalize(doc)
	assert.Len(t, out.Sections, 8)
	for i, s := range out.Sections {
		assert.Equal(t, fmt.Sprintf("S%d", i), s.Title)
	}
}

func TestNormalize_ConservesItemCount(t *testing.T) {
	doc := &survey.Document{
		Title:     "T",
		Questions: []survey.Item{item("a", "How satisfied are you?"), item("b", "What price is fair?")},
		Sections: []survey.Section{
			{ID: 2, Title: "S", Items: []survey.Item{item("c", "Age?")}},
		},
	}
	for i := 0; i < 11; i++ {
		doc.Sections = append(doc.Sections, survey.Section{
			ID:    i + 3,
			Items: []survey.Item{item(fmt.Sprintf("e%d", i), "Opinion?")},
		})
	}
	before := survey.TotalItems(doc)

	out := New().Normalize(doc)
	assert.Equal(t, before, survey.TotalItems(out))
}

func TestNormalize_Idempotent(t *testing.T) {
	doc := &survey.Document{Title: "T"}
	for i := 0; i < 15; i++ {
		doc.Sections = append(doc.Sections, survey.Section{
			ID:    i + 2,
			Items: []survey.Item{item(fmt.Sprintf("q%d", i), fmt.Sprintf("Rating question %d about satisfaction", i))},
		})
	}

	n := New()
	once := n.Normalize(doc)
	twice := n.Normalize(once)
	assert.True(t, reflect.DeepEqual(once, twice))
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	doc := &survey.Document{
		Title:     "T",
		Questions: []survey.Item{item("orig", "Hello?")},
	}

	_ = New().Normalize(doc)

	require.Len(t, doc.Questions, 1)
	assert.Equal(t, "orig", doc.Questions[0].ID)
	assert.Empty(t, doc.Sections)
}

func TestNormalize_NilDocument(t *testing.T) {
	out := New().Normalize(nil)
	require.NotNil(t, out)
	assert.Equal(t, "Generated Survey", out.Title)
}

func TestNewWithThreshold_ClampsToBucketCount(t *testing.T) {
	n := NewWithThreshold(1)
	assert.Equal(t, 6, n.threshold)
}

func TestRenumberItems_SequentialAcrossSections(t *testing.T) {
	doc := &survey.Document{
		Sections: []survey.Section{
			{ID: 2, Items: []survey.Item{item("x", "A?"), item("y", "B?")}},
			{ID: 3, Items: []survey.Item{item("z", "C?")}},
		},
	}
	renumberItems(doc)
	assert.Equal(t, "item_1", doc.Sections[0].Items[0].ID)
	assert.Equal(t, "item_2", doc.Sections[0].Items[1].ID)
	assert.Equal(t, "item_3", doc.Sections[1].Items[0].ID)
}
