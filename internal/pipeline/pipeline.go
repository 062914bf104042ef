// Package pipeline wires generation end to end: prompt the model, recover a
// document from whatever came back, normalize it, validate it, and persist
// the attempt. Only a genuinely empty document stops the run; every other
// degradation surfaces as a lower validation score.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/llm"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/normalize"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/recovery"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/storage"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/taxonomy"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/validate"
)

// Result is the outcome of one generation run.
type Result struct {
	AttemptID string
	Document  *survey.Document
	Report    *validate.Report
	Raw       string
}

// Pipeline runs RFQ-to-survey generation. The store is optional; a nil store
// skips persistence.
type Pipeline struct {
	generator  llm.Generator
	parser     *recovery.Parser
	normalizer *normalize.Normalizer
	validator  *validate.Validator
	store      *storage.SQLiteStore
}

// New assembles a pipeline from its collaborators.
func New(gen llm.Generator, reg *taxonomy.Registry, norm *normalize.Normalizer, store *storage.SQLiteStore) *Pipeline {
	if norm == nil {
		norm = normalize.New()
	}
	return &Pipeline{
		generator:  gen,
		parser:     recovery.NewParser(),
		normalizer: norm,
		validator:  validate.New(reg),
		store:      store,
	}
}

// Generate runs one attempt. The model is called exactly once: the engine
// never retries the LLM, and validation findings never block the result.
func (p *Pipeline) Generate(ctx context.Context, rfq llm.RFQ) (*Result, error) {
	raw, err := p.generator.GenerateSurvey(ctx, rfq)
	if err != nil {
		return nil, fmt.Errorf("survey generation failed: %w", err)
	}
	return p.Process(ctx, rfq, raw)
}

// Process recovers, normalizes and validates an already-obtained model reply.
// It is split from Generate so stored raw responses can be re-processed.
func (p *Pipeline) Process(ctx context.Context, rfq llm.RFQ, raw string) (*Result, error) {
	doc := p.parser.Parse(raw)
	doc = p.normalizer.Normalize(doc)

	if err := survey.CheckNotEmpty(doc); err != nil {
		return nil, err
	}

	report := p.validator.Validate(doc, validate.Context{
		Methodologies: rfq.Methodologies,
		Industry:      rfq.Industry,
	})

	result := &Result{
		AttemptID: uuid.NewString(),
		Document:  doc,
		Report:    report,
		Raw:       raw,
	}

	if p.store != nil {
		attempt := storage.Attempt{
			ID:           result.AttemptID,
			RFQTitle:     rfq.Title,
			RawResponse:  raw,
			Document:     doc,
			Report:       report,
			OverallScore: report.OverallScore,
			CreatedAt:    time.Now(),
		}
		if err := p.store.SaveAttempt(ctx, attempt); err != nil {
			// Persistence trouble must not cost the caller the survey.
			log.Printf("warning: failed to persist attempt %s: %v", result.AttemptID, err)
		}
	}
	return result, nil
}
