package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"zameencrawler/internal/domain"
	"zameencrawler/internal/extract"
)

const (
	baseURL         = "https://www.zameen.com"
	defaultStartURL = baseURL + "/Homes/Islamabad_DHA_Defence-3188-1.html"

	sourceTag = extract.SourceTag
)

// buildSeeds turns a run request into initial tasks: explicit URLs are
// classified by shape, a free-text triple becomes a bootstrap task, and
// an empty request falls back to the default start URL.
func (c *Crawler) buildSeeds(req *domain.RunRequest) ([]*domain.Task, error) {
	if req == nil {
		return nil, fmt.Errorf("empty run request")
	}

	var seeds []*domain.Task
	for _, raw := range req.StartURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("invalid start url %q: %w", raw, err)
		}
		seeds = append(seeds, classifySeedURL(raw))
	}
	if len(seeds) > 0 {
		return seeds, nil
	}

	query := &domain.SearchQuery{
		Keyword:  strings.TrimSpace(req.Keyword),
		Location: strings.TrimSpace(req.Location),
		Category: strings.TrimSpace(req.Category),
	}
	if query.Keyword != "" || query.Location != "" || query.Category != "" {
		return []*domain.Task{{
			URL:        bootstrapURL(query),
			Label:      domain.LabelBootstrap,
			PageNumber: 1,
			Query:      query,
		}}, nil
	}

	return []*domain.Task{{URL: defaultStartURL, Label: domain.LabelList, PageNumber: 1}}, nil
}

// classifySeedURL maps a URL's shape to its label: detail pages carry a
// trailing listing id, everything else starts as a listing page.
func classifySeedURL(raw string) *domain.Task {
	if extract.IsDetailURL(raw) {
		return &domain.Task{
			URL:         raw,
			Label:       domain.LabelDetail,
			PageNumber:  1,
			IdentityKey: identityKeyForURL(raw),
		}
	}
	return &domain.Task{URL: raw, Label: domain.LabelList, PageNumber: 1}
}

func identityKeyForURL(raw string) string {
	if id := extract.DetailURLID(raw); id != "" {
		return id
	}
	return raw
}

func bootstrapURL(q *domain.SearchQuery) string {
	u, _ := url.Parse(baseURL + "/search/")
	params := url.Values{}
	if q.Keyword != "" {
		params.Set("search", q.Keyword)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// listingURL builds a location's canonical listing URL. The rentals
// section is used when the category asks for it; sale is the default.
func listingURL(node *domain.LocationNode, category string) string {
	segment := "Homes"
	if strings.Contains(strings.ToLower(category), "rent") {
		segment = "Rentals"
	}
	if node.ExternalID == "" {
		return fmt.Sprintf("%s/%s/%s-1.html", baseURL, segment, node.Slug)
	}
	return fmt.Sprintf("%s/%s/%s-%s-1.html", baseURL, segment, node.Slug, node.ExternalID)
}
