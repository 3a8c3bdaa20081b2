package crawler

import (
	"context"
	"fmt"

	"zameencrawler/internal/domain"
	"zameencrawler/internal/extract"
	"zameencrawler/internal/fetch"
)

// handleDetail extracts exactly one record from a detail page and
// emits it. The extractor falls back through its sources on its own;
// whatever partial record discovery captured fills remaining gaps.
func (c *Crawler) handleDetail(ctx context.Context, run *Run, task *domain.Task, resp *fetch.Response) error {
	page, err := extract.NewPage(task.URL, resp.Body)
	if err != nil {
		return fmt.Errorf("parse detail page: %w", err)
	}
	rec := extract.Detail(page, task.Partial)
	if rec.URL == "" {
		rec.URL = task.URL
	}
	c.emit(ctx, run, rec)
	return nil
}
