package report

import (
	"time"

	"github.com/amankumarsingh77/seo_audit/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewRecord renders issues in both formats and wraps them for archiving.
func NewRecord(domain, path string, issues []models.Issue) *models.AuditReport {
	return &models.AuditReport{
		Domain:    domain,
		Path:      path,
		Issues:    issues,
		Markdown:  ToMarkdown(issues),
		HTML:      ToHTML(issues),
		Failed:    len(issues) == 1 && issues[0].IsError(),
		CreatedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
}
