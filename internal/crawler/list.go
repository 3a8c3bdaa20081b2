package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"zameencrawler/internal/algolia"
	"zameencrawler/internal/domain"
	"zameencrawler/internal/extract"
	"zameencrawler/internal/fetch"
)

// handleList processes one HTML listing page: candidates are reserved
// against the ledger in page order, then pagination continues through
// the search API when the page embeds credentials, else the HTML link.
func (c *Crawler) handleList(ctx context.Context, run *Run, task *domain.Task, resp *fetch.Response) error {
	page, err := extract.NewPage(task.URL, resp.Body)
	if err != nil {
		return fmt.Errorf("parse listing page: %w", err)
	}
	res := extract.List(page)

	queued := c.processCandidates(ctx, run, res.Candidates)
	c.logger.Info("listing page processed",
		zap.String("url", task.URL),
		zap.Int("page", task.PageNumber),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("queued", queued))

	creds := res.Algolia
	if creds == nil {
		creds = task.Algolia
	}
	c.enqueueNextPage(run, task, creds, res.NextURL, 0)
	return nil
}

// handleAlgoliaQuery processes one JSON search-API page with the same
// candidate logic; malformed payloads drop the page, not the run.
func (c *Crawler) handleAlgoliaQuery(ctx context.Context, run *Run, task *domain.Task, resp *fetch.Response) error {
	candidates, nbPages, err := extract.AlgoliaHits(resp.Body, task.Algolia)
	if err != nil {
		return err
	}

	queued := c.processCandidates(ctx, run, candidates)
	c.logger.Info("search page processed",
		zap.Int("page", task.PageNumber),
		zap.Int("candidates", len(candidates)),
		zap.Int("queued", queued))

	c.enqueueNextPage(run, task, task.Algolia, "", nbPages)
	return nil
}

// processCandidates reserves each new candidate against the ledger and
// either queues its detail task or, with detail scraping off, emits the
// partial record directly. Returns how many candidates were accepted.
func (c *Crawler) processCandidates(ctx context.Context, run *Run, candidates []extract.Candidate) int {
	queued := 0
	for _, cand := range candidates {
		if run.ledger.SavedEnough() {
			break
		}

		if saved, err := c.seen.WasSaved(ctx, cand.IdentityKey); err == nil && saved {
			continue
		}
		if !run.ledger.ReserveDetail(cand.IdentityKey) {
			continue
		}
		queued++

		if run.scrapeDetails {
			run.enqueue(c.logger, &domain.Task{
				URL:         cand.URL,
				Label:       domain.LabelDetail,
				PageNumber:  1,
				Partial:     cand.Partial,
				IdentityKey: cand.IdentityKey,
			})
			continue
		}

		rec := cand.Partial
		if rec == nil {
			rec = &domain.Listing{URL: cand.URL}
		}
		if rec.URL == "" {
			rec.URL = cand.URL
		}
		c.emit(ctx, run, rec)
	}
	return queued
}

// enqueueNextPage continues pagination while the budget and the page
// ceiling allow. The search-API task is preferred over the HTML link:
// it is higher-fidelity and immune to markup drift. nbPages, when
// known, caps API pagination at the index's own page count.
func (c *Crawler) enqueueNextPage(run *Run, task *domain.Task, creds *domain.AlgoliaCredentials, nextURL string, nbPages int) {
	if run.ledger.SavedEnough() || run.ledger.Exhausted() {
		return
	}
	next := task.PageNumber + 1
	if next > run.maxPages {
		return
	}

	if creds != nil && (nbPages == 0 || next <= nbPages) {
		if !run.ledger.ReservePage(algolia.PageSignature(creds, next)) {
			return
		}
		queryTask, err := algolia.NewQueryTask(creds, next)
		if err != nil {
			c.logger.Warn("could not build search query task", zap.Error(err))
			return
		}
		run.enqueue(c.logger, queryTask)
		return
	}

	if nextURL != "" && run.ledger.ReservePage(nextURL) {
		run.enqueue(c.logger, &domain.Task{
			URL:        nextURL,
			Label:      domain.LabelList,
			PageNumber: next,
		})
		return
	}
	c.logger.Info("no next page after page", zap.Int("page", task.PageNumber))
}
