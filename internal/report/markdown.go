package report

import (
	"fmt"
	"strings"

	"github.com/amankumarsingh77/seo_audit/models"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

// ToMarkdown never fails; an internal fault is returned as the report text.
func ToMarkdown(issues []models.Issue) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("Error generating Markdown report: %v", r)
		}
	}()

	var b strings.Builder
	b.WriteString("# " + Title + "\n\n")
	for _, issue := range issues {
		b.WriteString("## " + Heading(issue) + "\n")
		if issue.IsError() {
			b.WriteString("\n**Error:** " + cellEscaper.Replace(issue.Error) + "\n\n")
			continue
		}
		b.WriteString("| Metric | Value |\n|---|---|\n")
		for _, row := range Rows(issue) {
			fmt.Fprintf(&b, "| %s | %s |\n", row.Metric, cellEscaper.Replace(row.Value))
		}
		if len(issue.Flags) > 0 {
			b.WriteString("\n**Issues:** " + FlagLabels(issue) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
