package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSurveyPrompt_CoreStructure(t *testing.T) {
	pb := &PromptBuilder{}
	prompt := pb.BuildSurveyPrompt(RFQ{
		Title:         "Cold Brew Concept Test",
		Description:   "Evaluate a new cold brew line.",
		Methodologies: []string{"van_westendorp"},
		Industry:      "beverages",
		TargetSegment: "US coffee drinkers 18-54",
		SampleSize:    400,
	})

	assert.Contains(t, prompt, "Reply with a single JSON object and nothing else")
	assert.Contains(t, prompt, "- Title: Cold Brew Concept Test")
	assert.Contains(t, prompt, "- Methodologies: van_westendorp")
	assert.Contains(t, prompt, "- Target sample size: 400")
	assert.Contains(t, prompt, "Section 1: the sampling plan only")
	assert.Contains(t, prompt, "Section 5: methodology-specific questions for van_westendorp")
	assert.Contains(t, prompt, "Van Westendorp: include all four open numeric price questions")
	assert.NotContains(t, prompt, "Gabor-Granger")
}

func TestBuildSurveyPrompt_OmitsEmptyFields(t *testing.T) {
	pb := &PromptBuilder{}
	prompt := pb.BuildSurveyPrompt(RFQ{Title: "Minimal"})

	assert.Contains(t, prompt, "- Title: Minimal")
	assert.NotContains(t, prompt, "- Description:")
	assert.NotContains(t, prompt, "- Industry:")
	assert.NotContains(t, prompt, "- Target sample size:")
	assert.NotContains(t, prompt, "Van Westendorp:")
}

func TestBuildSurveyPrompt_GaborGrangerHint(t *testing.T) {
	pb := &PromptBuilder{}
	prompt := pb.BuildSurveyPrompt(RFQ{Title: "P", Methodologies: []string{"Gabor_Granger"}})
	assert.Contains(t, prompt, "Gabor-Granger: include a purchase acceptance question")
}
