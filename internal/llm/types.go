// Package llm calls the configured model provider to draft a survey from an
// RFQ. The reply is raw text: turning it into a trustworthy document is the
// recovery parser's job, never this package's.
package llm

import "context"

// RFQ is the research requirement that seeds generation.
type RFQ struct {
	Title         string   `yaml:"title" json:"title"`
	Description   string   `yaml:"description" json:"description"`
	Methodologies []string `yaml:"methodologies" json:"methodologies"`
	Industry      string   `yaml:"industry" json:"industry"`
	TargetSegment string   `yaml:"target_segment" json:"target_segment"`
	SampleSize    int      `yaml:"sample_size" json:"sample_size"`
}

// Generator drafts a survey for an RFQ and returns the model's raw reply.
type Generator interface {
	GenerateSurvey(ctx context.Context, rfq RFQ) (string, error)
}
