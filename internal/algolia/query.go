package algolia

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"zameencrawler/internal/domain"
)

const defaultHitsPerPage = 25

// NewQueryTask builds the POST task fetching one page of search results
// with the given credentials. Pages are 0-based on the wire; the task's
// PageNumber stays 1-based like every other task.
func NewQueryTask(creds *domain.AlgoliaCredentials, pageNumber int) (*domain.Task, error) {
	if creds == nil || creds.AppID == "" || creds.APIKey == "" || creds.IndexName == "" {
		return nil, fmt.Errorf("algolia: incomplete credentials")
	}
	hits := creds.HitsPerPage
	if hits <= 0 {
		hits = defaultHitsPerPage
	}

	params := url.Values{}
	if creds.Filters != "" {
		params.Set("filters", creds.Filters)
	}
	params.Set("hitsPerPage", strconv.Itoa(hits))
	params.Set("page", strconv.Itoa(pageNumber-1))

	body, err := json.Marshal(map[string]string{"params": params.Encode()})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://%s-dsn.algolia.net/1/indexes/%s/query", creds.AppID, url.PathEscape(creds.IndexName))
	return &domain.Task{
		URL:        endpoint,
		Label:      domain.LabelAlgoliaQuery,
		PageNumber: pageNumber,
		Method:     "POST",
		Headers: map[string]string{
			"X-Algolia-Application-Id": creds.AppID,
			"X-Algolia-API-Key":        creds.APIKey,
			"Content-Type":             "application/json",
		},
		Body:    body,
		Algolia: creds,
	}, nil
}

// PageSignature identifies one page request for ledger dedup, preventing
// re-enqueue loops on an identical next-page request.
func PageSignature(creds *domain.AlgoliaCredentials, pageNumber int) string {
	hits := creds.HitsPerPage
	if hits <= 0 {
		hits = defaultHitsPerPage
	}
	return fmt.Sprintf("%s|%s|%d|%d", creds.IndexName, creds.Filters, hits, pageNumber)
}
