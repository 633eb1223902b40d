// Package monitor checks URLs for redirect and availability problems and
// folds the findings into alerts.
package monitor

import (
	"context"
	"fmt"
)

const (
	IssueChainExceeds  = "Redirect chain exceeds threshold"
	IssueRedirectLoop  = "Infinite redirect loop detected"
	IssuePersistentErr = "Persistent errors detected"
	IssueDowntime      = "Downtime detected"
)

// RedirectTracer reports the hops a request for url passes through, starting
// with url itself.
type RedirectTracer interface {
	Trace(ctx context.Context, url string, maxChain int) ([]string, error)
}

// StatusSampler reports recent status codes observed for url.
type StatusSampler interface {
	History(ctx context.Context, url string) ([]int, error)
}

// SyntheticTracer fabricates a chain of maxChain hops below url. It keeps the
// tracer deterministic until a real redirect follower is plugged in.
type SyntheticTracer struct{}

func (SyntheticTracer) Trace(_ context.Context, url string, maxChain int) ([]string, error) {
	hops := maxChain
	if hops < 1 {
		hops = 1
	}
	chain := make([]string, 0, hops+1)
	chain = append(chain, url)
	for i := 1; i <= hops; i++ {
		chain = append(chain, fmt.Sprintf("%s/redirect%d", url, i))
	}
	return chain, nil
}

// SyntheticSampler returns a fixed history containing both client and server
// errors.
type SyntheticSampler struct{}

func (SyntheticSampler) History(context.Context, string) ([]int, error) {
	return []int{200, 200, 500, 404, 200, 503}, nil
}

type RedirectResult struct {
	URL           string   `json:"url"`
	RedirectChain []string `json:"redirect_chain"`
	Issues        []string `json:"issues"`
}

type UptimeResult struct {
	URL           string   `json:"url"`
	StatusHistory []int    `json:"status_history"`
	Issues        []string `json:"issues"`
}

// RedirectIssues flags chains longer than maxChain and chains that revisit a
// hop.
func RedirectIssues(chain []string, maxChain int) []string {
	issues := []string{}
	if len(chain) > maxChain {
		issues = append(issues, IssueChainExceeds)
	}
	seen := make(map[string]struct{}, len(chain))
	for _, hop := range chain {
		if _, dup := seen[hop]; dup {
			issues = append(issues, IssueRedirectLoop)
			break
		}
		seen[hop] = struct{}{}
	}
	return issues
}

// UptimeIssues flags more than threshold error responses (>= 400) and any
// server error (5xx) as downtime.
func UptimeIssues(history []int, threshold int) []string {
	issues := []string{}
	errCount, down := 0, false
	for _, code := range history {
		if code >= 400 {
			errCount++
		}
		if code >= 500 && code <= 599 {
			down = true
		}
	}
	if errCount > threshold {
		issues = append(issues, IssuePersistentErr)
	}
	if down {
		issues = append(issues, IssueDowntime)
	}
	return issues
}
