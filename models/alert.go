package models

type AlertType string

const (
	AlertRedirect AlertType = "redirect"
	AlertUptime   AlertType = "uptime"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Alert struct {
	URL       string    `json:"url" bson:"url"`
	IssueType AlertType `json:"issue_type" bson:"issue_type"`
	Severity  Severity  `json:"severity" bson:"severity"`
	Detail    string    `json:"detail" bson:"detail"`
}
