// Package render exports survey documents for human review.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/validate"
)

// Markdown renders a document as reviewer-facing Markdown. Sections appear in
// id order with the sampling plan first.
func Markdown(d *survey.Document) string {
	var sb strings.Builder
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "Generated Survey"
	}
	sb.WriteString("# " + title + "\n\n")
	if desc := strings.TrimSpace(d.Description); desc != "" {
		sb.WriteString(desc + "\n\n")
	}

	sections := append([]survey.Section(nil), d.Sections...)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].ID < sections[j].ID })

	for _, s := range sections {
		fmt.Fprintf(&sb, "## %s\n\n", sectionHeading(s))
		if desc := strings.TrimSpace(s.Description); desc != "" {
			sb.WriteString(desc + "\n\n")
		}
		if s.SamplePlan != nil {
			renderSamplePlan(&sb, s.SamplePlan)
		}
		for _, block := range s.TextBlocks {
			if t := strings.TrimSpace(block); t != "" {
				sb.WriteString("> " + t + "\n\n")
			}
		}
		for _, item := range s.Items {
			renderItem(&sb, item)
		}
	}
	return sb.String()
}

// MarkdownWithReport appends the validation summary after the survey body.
func MarkdownWithReport(d *survey.Document, r *validate.Report) string {
	var sb strings.Builder
	sb.WriteString(Markdown(d))
	if r == nil {
		return sb.String()
	}

	sb.WriteString("---\n\n## Validation\n\n")
	fmt.Fprintf(&sb, "**Score**: %.2f — %s\n\n", r.OverallScore, r.Summary)
	if len(r.Issues) == 0 {
		sb.WriteString("No issues found.\n")
		return sb.String()
	}
	for _, issue := range r.Issues {
		where := ""
		if issue.SectionID != 0 {
			where = fmt.Sprintf(" (section %d)", issue.SectionID)
		}
		fmt.Fprintf(&sb, "- **%s**%s %s: %s\n", issue.Severity, where, issue.Label, issue.Message)
	}
	return sb.String()
}

func sectionHeading(s survey.Section) string {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = fmt.Sprintf("Section %d", s.ID)
	}
	return title
}

func renderSamplePlan(sb *strings.Builder, plan *survey.SamplePlan) {
	fmt.Fprintf(sb, "Sample size: %d\n\n", plan.SampleSize)
	for _, demo := range plan.Demographics {
		fmt.Fprintf(sb, "- %s", demo.Dimension)
		if len(demo.Split) > 0 {
			keys := make([]string, 0, len(demo.Split))
			for k := range demo.Split {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s %d%%", k, demo.Split[k]))
			}
			fmt.Fprintf(sb, ": %s", strings.Join(parts, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if notes := strings.TrimSpace(plan.Notes); notes != "" {
		sb.WriteString(notes + "\n\n")
	}
}

func renderItem(sb *strings.Builder, item survey.Item) {
	fmt.Fprintf(sb, "**%s** (%s): %s\n\n", item.ID, item.Type, strings.TrimSpace(item.Text))
	for _, opt := range item.Options {
		fmt.Fprintf(sb, "- %s\n", opt)
	}
	if len(item.Options) > 0 {
		sb.WriteString("\n")
	}
}
