package crawler

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"zameencrawler/internal/domain"
	"zameencrawler/internal/extract"
	"zameencrawler/internal/fetch"
	"zameencrawler/internal/location"
)

// cityLevel matches the site's location hierarchy: 0 country,
// 1 province, 2 city, deeper levels are areas.
const cityLevel = 2

// handleBootstrap resolves the free-text seed against the bootstrap
// page's location graph. A city-level match with a keyword still to
// narrow becomes a BOOTSTRAP_CITY hop; any other match goes straight to
// its listing page. Resolution failure ends this seed, not the run.
func (c *Crawler) handleBootstrap(run *Run, task *domain.Task, resp *fetch.Response) error {
	nodes, err := locationGraph(task.URL, resp.Body)
	if err != nil {
		return err
	}
	query := task.Query
	if query == nil {
		query = &domain.SearchQuery{}
	}

	combined := strings.TrimSpace(strings.Join(nonEmpty(query.Keyword, query.Location), " "))
	node, score := location.Resolve(combined, query.Location, nodes)
	if node == nil {
		c.logger.Warn("location did not resolve, seed produces no tasks",
			zap.String("query", combined), zap.Int("best_score", score))
		return nil
	}

	target := listingURL(node, query.Category)
	if node.Level == cityLevel && query.Keyword != "" {
		run.enqueue(c.logger, &domain.Task{
			URL:        target,
			Label:      domain.LabelBootstrapCity,
			PageNumber: 1,
			Query:      query,
		})
		return nil
	}
	run.enqueue(c.logger, &domain.Task{URL: target, Label: domain.LabelList, PageNumber: 1})
	return nil
}

// handleBootstrapCity re-runs the resolver inside the city's own graph
// to find the most specific sub-area; on failure the city page itself
// is crawled.
func (c *Crawler) handleBootstrapCity(run *Run, task *domain.Task, resp *fetch.Response) error {
	nodes, err := locationGraph(task.URL, resp.Body)
	if err != nil {
		return err
	}
	query := task.Query
	if query == nil {
		query = &domain.SearchQuery{}
	}

	target := task.URL
	if node, _ := location.Resolve(query.Keyword, query.Location, nodes); node != nil {
		target = listingURL(node, query.Category)
	} else {
		c.logger.Info("keyword did not narrow within city, using city page",
			zap.String("keyword", query.Keyword), zap.String("url", task.URL))
	}
	run.enqueue(c.logger, &domain.Task{URL: target, Label: domain.LabelList, PageNumber: 1})
	return nil
}

func locationGraph(pageURL string, body []byte) ([]domain.LocationNode, error) {
	page, err := extract.NewPage(pageURL, body)
	if err != nil {
		return nil, fmt.Errorf("parse bootstrap page: %w", err)
	}
	state := page.State()
	if state == nil {
		return nil, fmt.Errorf("bootstrap page carries no state object")
	}
	nodes := location.Collect(state)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no location nodes in bootstrap state")
	}
	return nodes, nil
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
