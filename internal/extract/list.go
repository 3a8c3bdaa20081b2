package extract

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"zameencrawler/internal/domain"
)

// Candidate pairs a detail URL with its dedup key and whatever fields
// the list page already yielded.
type Candidate struct {
	URL         string
	IdentityKey string
	Partial     *domain.Listing
}

// ListResult is everything a listing page offers the router: detail
// candidates in page order, search-API credentials for pagination when
// the page embeds them, and the HTML next-page link as a fallback.
type ListResult struct {
	Candidates []Candidate
	Algolia    *domain.AlgoliaCredentials
	NextURL    string
}

var (
	detailPathRe  = regexp.MustCompile(`(?i)/Property/.*-(\d+)\.html$`)
	wrappedURLRe  = regexp.MustCompile(`(?i)https?://(?:www\.)?zameen\.com/Property/[^\s"'&]+-\d+\.html`)
	excludePathRe = regexp.MustCompile(`(?i)(blog|guide|news|about|contact)`)
	zameenHostRe  = regexp.MustCompile(`(?i)(^|\.)zameen\.com$`)
)

// List extracts detail candidates from a listing page, combining the
// embedded search hits, the structured item list and mined anchors.
// Within the page, the first occurrence of an identity key wins.
func List(p *Page) *ListResult {
	res := &ListResult{}
	seen := make(map[string]struct{})
	add := func(c Candidate) {
		if c.URL == "" {
			return
		}
		if c.IdentityKey == "" {
			c.IdentityKey = c.URL
		}
		if _, dup := seen[c.IdentityKey]; dup {
			return
		}
		seen[c.IdentityKey] = struct{}{}
		res.Candidates = append(res.Candidates, c)
	}

	state := p.State()
	for _, c := range stateHits(state, p.URL) {
		add(c)
	}
	for _, u := range itemListURLs(p.doc, p.URL) {
		if IsDetailURL(u) {
			add(Candidate{URL: u, IdentityKey: DetailURLID(u)})
		}
	}
	for _, u := range anchorDetailURLs(p.doc, p.URL) {
		add(Candidate{URL: u, IdentityKey: DetailURLID(u)})
	}

	res.Algolia = credentialsFrom(state)
	res.NextURL = nextPageURL(p.doc, p.URL)
	return res
}

// IsDetailURL reports whether u has the site's detail-page shape.
func IsDetailURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return detailPathRe.MatchString(parsed.Path)
}

// DetailURLID pulls the external listing id out of a detail URL; empty
// when the URL does not carry one.
func DetailURLID(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	m := detailPathRe.FindStringSubmatch(parsed.Path)
	if m == nil {
		return ""
	}
	return m[1]
}

// stateHits reads the search hits embedded in a listing page's state.
func stateHits(state map[string]any, baseURL string) []Candidate {
	if state == nil {
		return nil
	}
	hits := digSlice(state, "hits")
	if hits == nil {
		hits = digSlice(state, "search", "hits")
	}
	if hits == nil {
		hits = digSlice(state, "listings")
	}
	var out []Candidate
	for _, h := range hits {
		obj, ok := h.(map[string]any)
		if !ok {
			continue
		}
		partial := listingFromObject(obj, baseURL)
		u := partial.URL
		if u == "" && partial.ExternalID != nil {
			u = fmt.Sprintf("%s/Property/listing-%s.html", siteBase, *partial.ExternalID)
			partial.URL = u
		}
		if u == "" {
			continue
		}
		out = append(out, Candidate{URL: u, IdentityKey: partial.IdentityKey(), Partial: partial})
	}
	return out
}

// anchorDetailURLs mines anchors for detail links, skipping obvious
// non-listing sections. Off-site wrapper links (share/redirect URLs)
// that embed a detail URL are unwrapped to the embedded one.
func anchorDetailURLs(doc *goquery.Document, base string) []string {
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := normalizeURL(href, base)
		if abs == "" {
			return
		}
		parsed, err := url.Parse(abs)
		if err != nil {
			return
		}
		if !zameenHostRe.MatchString(parsed.Hostname()) {
			// Social-share wrappers carry the detail URL inside their
			// query string; decode and fish it out.
			decoded, err := url.QueryUnescape(abs)
			if err != nil {
				decoded = abs
			}
			if inner := wrappedURLRe.FindString(decoded); inner != "" {
				abs = normalizeURL(inner, base)
			} else {
				return
			}
		}
		if excludePathRe.MatchString(abs) || !IsDetailURL(abs) {
			return
		}
		out = append(out, abs)
	})
	return out
}

// credentialsFrom reads the search-API credentials a listing page
// embeds for its own client-side pagination.
func credentialsFrom(state map[string]any) *domain.AlgoliaCredentials {
	if state == nil {
		return nil
	}
	m := digMap(state, "algolia")
	if m == nil {
		m = digMap(state, "search", "algolia")
	}
	if m == nil {
		return nil
	}
	creds := &domain.AlgoliaCredentials{
		AppID:     stringOf(firstOf(m, "appId", "applicationId")),
		APIKey:    stringOf(firstOf(m, "apiKey", "searchKey")),
		IndexName: stringOf(firstOf(m, "indexName", "index")),
		Filters:   stringOf(m["filters"]),
	}
	if n := numberOf(m["hitsPerPage"]); n != nil {
		creds.HitsPerPage = int(*n)
	}
	if creds.AppID == "" || creds.APIKey == "" || creds.IndexName == "" {
		return nil
	}
	return creds
}

// nextPageURL finds the HTML pagination link, used only when the page
// embeds no search-API credentials.
func nextPageURL(doc *goquery.Document, base string) string {
	if href, ok := doc.Find(`a[rel="next"], link[rel="next"]`).First().Attr("href"); ok {
		return normalizeURL(href, base)
	}
	var next string
	doc.Find(`a[title="Next"], a[aria-label="Next"], .pagination a`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(s.Text() + " " + s.AttrOr("title", ""))
		if strings.Contains(text, "next") || strings.Contains(text, "»") || strings.Contains(text, "›") {
			next = normalizeURL(s.AttrOr("href", ""), base)
			return false
		}
		return true
	})
	return next
}

// AlgoliaHits parses one JSON search-API response into candidates plus
// the total page count.
func AlgoliaHits(body []byte, creds *domain.AlgoliaCredentials) ([]Candidate, int, error) {
	var resp struct {
		Hits    []map[string]any `json:"hits"`
		NbPages int              `json:"nbPages"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("extract: malformed search response: %w", err)
	}
	state := map[string]any{"hits": anySlice(resp.Hits)}
	return stateHits(state, siteBase), resp.NbPages, nil
}

func anySlice(hits []map[string]any) []any {
	out := make([]any, len(hits))
	for i, h := range hits {
		out[i] = h
	}
	return out
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
