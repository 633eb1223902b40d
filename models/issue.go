package models

import "encoding/json"

// IssueKind is a classification flag; its value is the label shown in reports.
type IssueKind string

const (
	IssueNotIndexable      IssueKind = "Not indexable"
	IssueNoSchemaMarkup    IssueKind = "No schema markup detected"
	IssueNotMobileFriendly IssueKind = "Not mobile-friendly"
	IssueLowImpressions    IssueKind = "Low impressions"
	IssueLowClicks         IssueKind = "Low clicks"
)

// Issue merges every check result for one URL with the domain analytics and
// the derived flags. A record with Error set stands for a failed run and
// carries nothing else.
type Issue struct {
	URL            string      `json:"url" bson:"url"`
	Indexable      bool        `json:"indexable" bson:"indexable"`
	MetaRobots     *string     `json:"meta_robots" bson:"meta_robots"`
	CoreWebVitals  string      `json:"core_web_vitals" bson:"core_web_vitals"`
	SchemaJSONLD   []any       `json:"schema_json_ld" bson:"schema_json_ld"`
	MicrodataCount int         `json:"microdata_count" bson:"microdata_count"`
	RDFaCount      int         `json:"rdfa_count" bson:"rdfa_count"`
	MobileFriendly bool        `json:"mobile_friendly" bson:"mobile_friendly"`
	Viewport       *string     `json:"viewport" bson:"viewport"`
	Impressions    int         `json:"gsc_impressions" bson:"gsc_impressions"`
	Clicks         int         `json:"gsc_clicks" bson:"gsc_clicks"`
	CTR            float64     `json:"gsc_ctr" bson:"gsc_ctr"`
	Flags          []IssueKind `json:"issues" bson:"issues"`
	Error          string      `json:"error,omitempty" bson:"error,omitempty"`
}

func ErrorIssue(msg string) Issue {
	return Issue{Error: msg}
}

func (i Issue) IsError() bool {
	return i.Error != ""
}

func (i Issue) HasFlag(kind IssueKind) bool {
	for _, f := range i.Flags {
		if f == kind {
			return true
		}
	}
	return false
}

func (i Issue) MarshalJSON() ([]byte, error) {
	if i.IsError() {
		return json.Marshal(map[string]string{"error": i.Error})
	}
	type plain Issue
	p := plain(i)
	if p.Flags == nil {
		p.Flags = []IssueKind{}
	}
	return json.Marshal(p)
}
