package models

type CheckKind string

const (
	CheckIndexability   CheckKind = "indexability"
	CheckSchemaMarkup   CheckKind = "schema_markup"
	CheckMobileFriendly CheckKind = "mobile_friendly"
	CheckCoreWebVitals  CheckKind = "core_web_vitals"
)

// CheckResult is implemented by every per-URL check outcome.
type CheckResult interface {
	Kind() CheckKind
	PageURL() string
}

type IndexabilityResult struct {
	URL        string  `json:"url"`
	MetaRobots *string `json:"meta_robots"`
	Indexable  bool    `json:"indexable"`
}

func (r *IndexabilityResult) Kind() CheckKind { return CheckIndexability }
func (r *IndexabilityResult) PageURL() string { return r.URL }

type SchemaMarkupResult struct {
	URL            string `json:"url"`
	JSONLD         []any  `json:"schema_json_ld"`
	MicrodataCount int    `json:"microdata_count"`
	RDFaCount      int    `json:"rdfa_count"`
}

func (r *SchemaMarkupResult) Kind() CheckKind { return CheckSchemaMarkup }
func (r *SchemaMarkupResult) PageURL() string { return r.URL }

// HasMarkup is true when any of the three structured-data forms is present.
func (r *SchemaMarkupResult) HasMarkup() bool {
	return len(r.JSONLD) > 0 || r.MicrodataCount > 0 || r.RDFaCount > 0
}

type MobileFriendlyResult struct {
	URL            string  `json:"url"`
	MobileFriendly bool    `json:"mobile_friendly"`
	Viewport       *string `json:"viewport"`
}

func (r *MobileFriendlyResult) Kind() CheckKind { return CheckMobileFriendly }
func (r *MobileFriendlyResult) PageURL() string { return r.URL }

type CoreWebVitalsResult struct {
	URL           string `json:"url"`
	CoreWebVitals string `json:"core_web_vitals"`
}

func (r *CoreWebVitalsResult) Kind() CheckKind { return CheckCoreWebVitals }
func (r *CoreWebVitalsResult) PageURL() string { return r.URL }
