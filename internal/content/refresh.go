package content

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
)

const DefaultPrompt = "Suggest updated content for %s"

// Updater applies new copy to the page at url.
type Updater interface {
	Update(ctx context.Context, url, newContent string) (string, error)
}

// LogUpdater records the update without touching any CMS.
type LogUpdater struct {
	logger logging.Logger
}

func NewLogUpdater(logger logging.Logger) *LogUpdater {
	return &LogUpdater{logger: logger}
}

func (u *LogUpdater) Update(_ context.Context, url, newContent string) (string, error) {
	u.logger.Info(fmt.Sprintf("updating content at %s with new content: %s...", url, preview(newContent, 60)))
	return fmt.Sprintf("Content at %s updated successfully.", url), nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// MonitorUpdate summarises the outcome of an applied update.
func MonitorUpdate(url, status, feedback string) string {
	return fmt.Sprintf("Monitoring complete for %s: status=%s, feedback=%s", url, status, feedback)
}

// Prompt renders the refresh prompt for url. format must hold one %s verb.
func Prompt(format, url string) string {
	if format == "" {
		format = DefaultPrompt
	}
	return fmt.Sprintf(format, url)
}

// Refresher runs suggestion then update for each URL in the caller's
// goroutine.
type Refresher struct {
	suggester Suggester
	updater   Updater
	prompt    string
	logger    logging.Logger
}

func NewRefresher(s Suggester, u Updater, prompt string, logger logging.Logger) *Refresher {
	return &Refresher{suggester: s, updater: u, prompt: prompt, logger: logger}
}

func (r *Refresher) Refresh(ctx context.Context, urls []string) (string, error) {
	for _, url := range urls {
		suggestion, err := r.suggester.Suggest(ctx, Prompt(r.prompt, url))
		if err != nil {
			return "", fmt.Errorf("suggest content for %s: %w", url, err)
		}
		if _, err := r.updater.Update(ctx, url, suggestion); err != nil {
			return "", fmt.Errorf("update content for %s: %w", url, err)
		}
		r.logger.Info(fmt.Sprintf("automated content refresh for %s completed", url))
	}
	return fmt.Sprintf("Automated content refresh completed for %d URLs.", len(urls)), nil
}
