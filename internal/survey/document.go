// Package survey defines the canonical survey document model shared by the
// recovery parser, normalizer, validator, persistence and export layers.
package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyDocument is returned by CheckNotEmpty when a document carries no
// usable questions at all. It is the only hard failure in the generation
// pipeline; every other degradation produces a partial document instead.
var ErrEmptyDocument = errors.New("survey document contains no questions")

// ItemType is the closed set of question renderings the engine understands.
type ItemType string

const (
	SingleChoice   ItemType = "single_choice"
	MultipleChoice ItemType = "multiple_choice"
	Scale          ItemType = "scale"
	OpenText       ItemType = "text"
	Ranking        ItemType = "ranking"
	NumericOpen    ItemType = "numeric_open"
	NumericGrid    ItemType = "numeric_grid"
	Matrix         ItemType = "matrix"
	MatrixLikert   ItemType = "matrix_likert"
	Instruction    ItemType = "instruction"
	DisplayOnly    ItemType = "display_only"
)

// PlanSectionID is reserved for the sample/plan section. It never holds
// questions and is exempt from item-count checks.
const PlanSectionID = 1

// Document is the root of a generated survey.
type Document struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`

	// Questions carries the legacy flat shape (no section wrapper). The
	// normalizer migrates it into Sections; it is never written back out.
	Questions []Item `json:"questions,omitempty"`
}

// Section groups questions under a stable small integer id. Section ids encode
// fixed structural meaning and are never renumbered.
type Section struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Items       []Item      `json:"questions"`
	TextBlocks  []string    `json:"text_blocks,omitempty"`
	SamplePlan  *SamplePlan `json:"sample_plan,omitempty"`
}

// Item is a single survey question or display-only block.
type Item struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Type        ItemType `json:"type"`
	Options     []string `json:"options,omitempty"`
	Category    string   `json:"category,omitempty"`
	Methodology string   `json:"methodology,omitempty"`
}

// SamplePlan is the payload of the reserved plan section.
type SamplePlan struct {
	SampleSize   int           `json:"sample_size"`
	Demographics []Demographic `json:"demographics,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

// Demographic is one breakdown dimension of the sample plan.
type Demographic struct {
	Dimension string         `json:"dimension"`
	Split     map[string]int `json:"split,omitempty"`
}

// TotalItems counts questions across all sections plus any legacy flat list.
func TotalItems(d *Document) int {
	if d == nil {
		return 0
	}
	n := len(d.Questions)
	for _, s := range d.Sections {
		n += len(s.Items)
	}
	return n
}

// CheckNotEmpty enforces the one hard business rule of the pipeline: a survey
// with no questions is unusable. The plan section does not count toward
// emptiness since it never holds questions.
func CheckNotEmpty(d *Document) error {
	if TotalItems(d) == 0 {
		return ErrEmptyDocument
	}
	return nil
}

// Clone deep-copies a document so normalization can stay a pure function.
func Clone(d *Document) *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Title:       d.Title,
		Description: d.Description,
	}
	if d.Questions != nil {
		out.Questions = append([]Item(nil), d.Questions...)
		for i := range out.Questions {
			out.Questions[i].Options = append([]string(nil), d.Questions[i].Options...)
		}
	}
	for _, s := range d.Sections {
		cs := Section{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
		}
		if s.Items != nil {
			cs.Items = append([]Item(nil), s.Items...)
			for i := range cs.Items {
				cs.Items[i].Options = append([]string(nil), s.Items[i].Options...)
			}
		}
		if s.TextBlocks != nil {
			cs.TextBlocks = append([]string(nil), s.TextBlocks...)
		}
		if s.SamplePlan != nil {
			sp := *s.SamplePlan
			sp.Demographics = append([]Demographic(nil), s.SamplePlan.Demographics...)
			for i := range sp.Demographics {
				if src := s.SamplePlan.Demographics[i].Split; src != nil {
					split := make(map[string]int, len(src))
					for k, v := range src {
						split[k] = v
					}
					sp.Demographics[i].Split = split
				}
			}
			cs.SamplePlan = &sp
		}
		out.Sections = append(out.Sections, cs)
	}
	return out
}

// SectionByID returns the section with the given id, or nil.
func (d *Document) SectionByID(id int) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i]
		}
	}
	return nil
}

// NormalizeItemType maps the aliases LLMs emit onto the closed ItemType set.
// Unknown values fall back to open text rather than failing the decode.
func NormalizeItemType(raw string) ItemType {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, "-", "_")
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "single_choice", "single_select", "choice", "radio", "mcq_single":
		return SingleChoice
	case "multiple_choice", "multi_choice", "multi_select", "multiple_select", "checkbox":
		return MultipleChoice
	case "scale", "rating", "rating_scale", "likert":
		return Scale
	case "text", "open_text", "open_ended", "open", "textarea", "free_text":
		return OpenText
	case "ranking", "rank", "rank_order":
		return Ranking
	case "numeric", "numeric_open", "number", "numeric_input":
		return NumericOpen
	case "numeric_grid", "constant_sum", "allocation":
		return NumericGrid
	case "matrix", "grid", "matrix_single":
		return Matrix
	case "matrix_likert", "likert_grid", "matrix_rating":
		return MatrixLikert
	case "instruction", "instructions", "intro", "transition":
		return Instruction
	case "display_only", "display", "info", "text_block":
		return DisplayOnly
	default:
		return OpenText
	}
}

// itemAlias mirrors the JSON shapes LLMs actually produce: ids as numbers or
// strings, the type under "type" or "question_type", options as plain strings
// or {"text": ...} objects.
type itemAlias struct {
	ID           json.RawMessage   `json:"id"`
	Text         string            `json:"text"`
	Question     string            `json:"question"`
	Type         string            `json:"type"`
	QuestionType string            `json:"question_type"`
	Options      []json.RawMessage `json:"options"`
	Category     string            `json:"category"`
	Methodology  string            `json:"methodology"`
}

// UnmarshalJSON decodes an item leniently. Missing or malformed fields
// degrade to zero values; only a non-object payload is an error.
func (it *Item) UnmarshalJSON(data []byte) error {
	var alias itemAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("decoding survey item: %w", err)
	}

	it.ID = decodeFlexibleID(alias.ID)
	it.Text = strings.TrimSpace(alias.Text)
	if it.Text == "" {
		it.Text = strings.TrimSpace(alias.Question)
	}
	rawType := alias.Type
	if rawType == "" {
		rawType = alias.QuestionType
	}
	it.Type = NormalizeItemType(rawType)
	it.Category = strings.TrimSpace(alias.Category)
	it.Methodology = strings.TrimSpace(alias.Methodology)

	it.Options = nil
	for _, raw := range alias.Options {
		if opt := decodeOption(raw); opt != "" {
			it.Options = append(it.Options, opt)
		}
	}
	return nil
}

type sectionAlias struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []Item          `json:"questions"`
	Items       []Item          `json:"items"`
	TextBlocks  []string        `json:"text_blocks"`
	Intro       string          `json:"introText"`
	Closing     string          `json:"closingText"`
	SamplePlan  *SamplePlan     `json:"sample_plan"`
}

// UnmarshalJSON decodes a section leniently, folding the "items" alias and
// intro/closing text blocks into the canonical fields.
func (s *Section) UnmarshalJSON(data []byte) error {
	var alias sectionAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("decoding survey section: %w", err)
	}

	s.ID = decodeFlexibleInt(alias.ID)
	s.Title = strings.TrimSpace(alias.Title)
	s.Description = strings.TrimSpace(alias.Description)
	s.Items = alias.Questions
	if len(s.Items) == 0 {
		s.Items = alias.Items
	}
	s.TextBlocks = alias.TextBlocks
	if t := strings.TrimSpace(alias.Intro); t != "" {
		s.TextBlocks = append(s.TextBlocks, t)
	}
	if t := strings.TrimSpace(alias.Closing); t != "" {
		s.TextBlocks = append(s.TextBlocks, t)
	}
	s.SamplePlan = alias.SamplePlan
	return nil
}

func decodeFlexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.Itoa(int(asNumber))
	}
	return ""
}

func decodeFlexibleInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return int(asNumber)
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(asString)); err == nil {
			return n
		}
	}
	return 0
}

func decodeOption(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asObject struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if t := strings.TrimSpace(asObject.Text); t != "" {
			return t
		}
		return strings.TrimSpace(asObject.Label)
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatFloat(asNumber, 'f', -1, 64)
	}
	return ""
}

// DecodeDocument is the dedicated deserialization step for survey documents.
// It accepts the canonical sections shape as well as the legacy flat
// "questions" shape, and rejects payloads that are not objects at all.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding survey document: %w", err)
	}
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		doc.Title = "Generated Survey"
	}
	return &doc, nil
}
