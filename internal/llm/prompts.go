package llm

import (
	"fmt"
	"strings"
)

// PromptBuilder constructs the generation prompt for an RFQ.
type PromptBuilder struct{}

const jsonOnlyInstruction = "\n**OUTPUT FORMAT**: Reply with a single JSON object and nothing else. No prose before or after, no markdown fences.\n"

// BuildSurveyPrompt renders the full generation prompt. The requested shape
// mirrors the canonical document model so that a well-behaved reply parses on
// the recovery parser's fast path.
func (pb *PromptBuilder) BuildSurveyPrompt(rfq RFQ) string {
	var sb strings.Builder
	sb.WriteString("Role: Senior Market Research Consultant. Task: Design a complete quantitative survey.\n")
	sb.WriteString(jsonOnlyInstruction)

	sb.WriteString("\nResearch requirement:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", rfq.Title)
	if rfq.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", rfq.Description)
	}
	if len(rfq.Methodologies) > 0 {
		fmt.Fprintf(&sb, "- Methodologies: %s\n", strings.Join(rfq.Methodologies, ", "))
	}
	if rfq.Industry != "" {
		fmt.Fprintf(&sb, "- Industry: %s\n", rfq.Industry)
	}
	if rfq.TargetSegment != "" {
		fmt.Fprintf(&sb, "- Target segment: %s\n", rfq.TargetSegment)
	}
	if rfq.SampleSize > 0 {
		fmt.Fprintf(&sb, "- Target sample size: %d\n", rfq.SampleSize)
	}

	sb.WriteString("\nStructure the survey as:\n")
	sb.WriteString("1. Section 1: the sampling plan only (sample_plan payload, no questions).\n")
	sb.WriteString("2. Section 2: screener and basic demographics.\n")
	sb.WriteString("3. Section 3: brand awareness and perception.\n")
	sb.WriteString("4. Section 4: concept evaluation and purchase intent.\n")
	sb.WriteString("5. Section 5: methodology-specific questions")
	if len(rfq.Methodologies) > 0 {
		fmt.Fprintf(&sb, " for %s", strings.Join(rfq.Methodologies, " and "))
	}
	sb.WriteString(".\n")
	sb.WriteString("6. Section 6: open feedback and classification.\n")

	sb.WriteString("\nJSON shape:\n")
	sb.WriteString(`{
  "title": "...",
  "description": "...",
  "sections": [
    {
      "id": 1,
      "title": "Sampling Plan",
      "sample_plan": {"sample_size": 400, "demographics": [{"dimension": "age", "split": {"18-34": 50, "35-54": 30, "55+": 20}}]}
    },
    {
      "id": 2,
      "title": "...",
      "questions": [
        {"id": "q1", "text": "...", "type": "single_choice", "options": ["..."], "category": "demographic"}
      ]
    }
  ]
}`)
	sb.WriteString("\n\nQuestion types: single_choice, multiple_choice, scale, text, ranking, numeric_open, numeric_grid, matrix, matrix_likert, instruction, display_only.\n")
	if hasMethodology(rfq, "van_westendorp") {
		sb.WriteString("Van Westendorp: include all four open numeric price questions (too cheap, bargain, getting expensive, too expensive) tagged methodology \"van_westendorp\".\n")
	}
	if hasMethodology(rfq, "gabor_granger") {
		sb.WriteString("Gabor-Granger: include a purchase acceptance question at stated price points tagged methodology \"gabor_granger\".\n")
	}
	return sb.String()
}

func hasMethodology(rfq RFQ, name string) bool {
	for _, m := range rfq.Methodologies {
		if strings.EqualFold(strings.TrimSpace(m), name) {
			return true
		}
	}
	return false
}
