package models

// Source identifies where a URL was discovered.
type Source string

const (
	SourceRobots   Source = "robots"
	SourceSitemap  Source = "sitemap"
	SourceManifest Source = "manifest"
)

type URLRecord struct {
	URL    string `json:"url" bson:"url"`
	Source Source `json:"source" bson:"source"`
}

// WorkingSet is the de-duplicated union of discovered URLs. Iteration
// follows first-seen order so downstream output is deterministic.
type WorkingSet struct {
	index map[string]struct{}
	urls  []string
}

func NewWorkingSet(urls ...string) *WorkingSet {
	ws := &WorkingSet{index: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		ws.Add(u)
	}
	return ws
}

// Add reports whether url was new to the set.
func (w *WorkingSet) Add(url string) bool {
	if w.index == nil {
		w.index = make(map[string]struct{})
	}
	if _, ok := w.index[url]; ok {
		return false
	}
	w.index[url] = struct{}{}
	w.urls = append(w.urls, url)
	return true
}

func (w *WorkingSet) Contains(url string) bool {
	_, ok := w.index[url]
	return ok
}

func (w *WorkingSet) URLs() []string {
	out := make([]string, len(w.urls))
	copy(out, w.urls)
	return out
}

func (w *WorkingSet) Len() int {
	return len(w.urls)
}
