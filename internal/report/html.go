package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/amankumarsingh77/seo_audit/models"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"heading": Heading,
	"rows":    Rows,
	"flags":   FlagLabels,
}).Parse(`<html><head><title>{{.Title}}</title><style>table{border-collapse:collapse;}th,td{border:1px solid #ccc;padding:4px;}th{background:#eee;}</style></head><body>
<h1>{{.Title}}</h1>
{{- range .Issues}}
<h2>{{heading .}}</h2>
{{- if .IsError}}
<p><strong>Error:</strong> {{.Error}}</p>
{{- else}}
<table>
<tr><th>Metric</th><th>Value</th></tr>
{{- range rows .}}
<tr><td>{{.Metric}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- if .Flags}}
<p><strong>Issues:</strong> {{flags .}}</p>
{{- end}}
{{- end}}
{{- end}}
</body></html>
`))

// ToHTML never fails; an internal fault is returned as an error paragraph.
func ToHTML(issues []models.Issue) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("<p>Error generating HTML report: %v</p>", r)
		}
	}()

	var buf bytes.Buffer
	err := htmlReport.Execute(&buf, struct {
		Title  string
		Issues []models.Issue
	}{Title, issues})
	if err != nil {
		return fmt.Sprintf("<p>Error generating HTML report: %s</p>", template.HTMLEscapeString(err.Error()))
	}
	return buf.String()
}
