package domain

// Label classifies a crawl task and selects its handler.
type Label string

const (
	LabelBootstrap     Label = "BOOTSTRAP"
	LabelBootstrapCity Label = "BOOTSTRAP_CITY"
	LabelList          Label = "LIST"
	LabelAlgoliaQuery  Label = "ALGOLIA_QUERY"
	LabelDetail        Label = "DETAIL"
)

// Task is one unit of crawl work. It is created by the router (or by
// initial seed construction) and consumed exactly once by the fetch engine.
type Task struct {
	URL         string
	Label       Label
	PageNumber  int // 1-based
	Method      string
	Headers     map[string]string
	Body        []byte
	Partial     *Listing // fields captured during list-page discovery
	IdentityKey string
	Algolia     *AlgoliaCredentials // carried for search-API pagination
	Query       *SearchQuery        // only on BOOTSTRAP / BOOTSTRAP_CITY
	Retry       int
}

// SearchQuery is the free-text seed triple.
type SearchQuery struct {
	Keyword  string
	Location string
	Category string
}

// AlgoliaCredentials identify the site's backing search index and the
// filter expression a paginated query task should repeat.
type AlgoliaCredentials struct {
	AppID       string
	APIKey      string
	IndexName   string
	Filters     string
	HitsPerPage int
}

// Listing is the output record. Every numeric field is either a finite
// number or nil, never NaN and never a unit-laden string.
type Listing struct {
	Title        *string  `json:"title"`
	Price        *float64 `json:"price"`
	Currency     *string  `json:"currency"`
	Bedrooms     *float64 `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	Area         *float64 `json:"area"`
	AreaUnit     *string  `json:"area_unit"`
	Location     *string  `json:"location"`
	City         *string  `json:"city"`
	PropertyType *string  `json:"property_type"`
	Purpose      *string  `json:"purpose"` // "sale" | "rent" | nil
	Description  *string  `json:"description"`
	URL          string   `json:"url"`
	Source       string   `json:"source"`
	ExternalID   *string  `json:"external_id"`
}

// IdentityKey dedupes listings: external id when known, else the URL.
func (l *Listing) IdentityKey() string {
	if l.ExternalID != nil && *l.ExternalID != "" {
		return *l.ExternalID
	}
	return l.URL
}

// LocationNode is one entry in the site's location hierarchy,
// immutable once collected from a bootstrap page.
type LocationNode struct {
	Name       string
	Slug       string
	ExternalID string
	Level      int // 0 = country, deeper areas have higher levels
	Hierarchy  []string
}

// RunRequest is the payload starting a scrape run. Pointer fields fall
// back to configured defaults when absent.
type RunRequest struct {
	StartURLs     []string `json:"start_urls"`
	Keyword       string   `json:"keyword"`
	Location      string   `json:"location"`
	Category      string   `json:"category"`
	ResultsWanted *int     `json:"results_wanted"`
	MaxPages      *int     `json:"max_pages"`
	ScrapeDetails *bool    `json:"scrape_details"`
}

// RunStatus reports a run's budget accounting to the API.
type RunStatus struct {
	ID              string `json:"id"`
	State           string `json:"state"` // "running", "finished"
	Saved           int    `json:"saved"`
	Reserved        int    `json:"reserved"`
	ResultsWanted   int    `json:"results_wanted"`
	MaxReservations int    `json:"max_reservations"`
}
