package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/taxonomy"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	reg, err := taxonomy.Load()
	require.NoError(t, err)
	return New(reg)
}

func TestDetectItem_UnaidedAwareness(t *testing.T) {
	d := newDetector(t)
	item := survey.Item{
		ID:   "q1",
		Text: "What brands come to mind when you think of coffee?",
		Type: survey.OpenText,
	}
	assert.Equal(t, []string{"Brand_Awareness_Unaided"}, d.DetectItem(item))
}

func TestDetectItem_NegativeKeywordsBlockUnaided(t *testing.T) {
	d := newDetector(t)
	item := survey.Item{
		ID:      "q1",
		Text:    "Which of the following brands have you heard of?",
		Type:    survey.MultipleChoice,
		Options: []string{"Starbucks", "Dunkin", "Peets", "None of these"},
	}
	labels := d.DetectItem(item)
	assert.Contains(t, labels, "Brand_Awareness_Aided")
	assert.NotContains(t, labels, "Brand_Awareness_Unaided")
}

func TestDetectItem_MinOptionsRequirement(t *testing.T) {
	d := newDetector(t)
	item := survey.Item{
		ID:      "q1",
		Text:    "Which of the following brands have you heard of?",
		Type:    survey.MultipleChoice,
		Options: []string{"Starbucks", "Dunkin"},
	}
	assert.NotContains(t, d.DetectItem(item), "Brand_Awareness_Aided")
}

func TestDetectItem_TypeMismatch(t *testing.T) {
	d := newDetector(t)
	item := survey.Item{
		ID:   "q1",
		Text: "How satisfied are you with the product?",
		Type: survey.OpenText,
	}
	assert.NotContains(t, d.DetectItem(item), "Product_Satisfaction")

	item.Type = survey.Scale
	assert.Contains(t, d.DetectItem(item), "Product_Satisfaction")
}

func TestDetectText_SkipsItemBoundRules(t *testing.T) {
	d := newDetector(t)

	labels := d.DetectText("Please read the following concept description carefully.")
	assert.Equal(t, []string{"Concept_Introduction"}, labels)

	// Satisfaction rules require an item type and cannot match plain text.
	assert.Empty(t, d.DetectText("We value your satisfaction."))
}

func TestConfidence_WeightedCriteria(t *testing.T) {
	d := newDetector(t)
	item := survey.Item{
		ID:      "q1",
		Text:    "Which of the following brands have you heard of?",
		Type:    survey.MultipleChoice,
		Options: []string{"Starbucks", "Dunkin", "Peets", "None of these"},
	}

	scores := d.Confidence(item, []string{"Brand_Awareness_Aided"})
	require.Contains(t, scores, "Brand_Awareness_Aided")
	// 2 of 4 keywords, type matches, no context terms on the rule, option
	// count satisfied: 0.4*0.5 + 0.3 + 0.2 + 0.1.
	assert.InDelta(t, 0.8, scores["Brand_Awareness_Aided"], 1e-9)
}

func TestConfidence_UnknownLabelSkipped(t *testing.T) {
	d := newDetector(t)
	scores := d.Confidence(survey.Item{Text: "x"}, []string{"No_Such_Label"})
	assert.Empty(t, scores)
}

func TestDetectInDocument_UnionsItemsAndTextBlocks(t *testing.T) {
	d := newDetector(t)
	doc := &survey.Document{
		Sections: []survey.Section{
			{
				ID:         4,
				Title:      "Concept",
				TextBlocks: []string{"Please read the following new product concept."},
				Items: []survey.Item{
					{
						ID:      "q1",
						Text:    "How likely are you to purchase this product?",
						Type:    survey.Scale,
						Options: []string{"1", "2", "3", "4", "5"},
					},
				},
			},
		},
	}

	bySection := d.DetectInDocument(doc)
	require.Contains(t, bySection, 4)
	assert.Contains(t, bySection[4], "Concept_Introduction")
	assert.Contains(t, bySection[4], "Purchase_Intent")
}

func TestDetectInDocument_NilDocument(t *testing.T) {
	d := newDetector(t)
	assert.Empty(t, d.DetectInDocument(nil))
}
