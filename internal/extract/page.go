// Package extract turns fetched pages and search-API responses into
// listing records and detail-URL candidates. Detail extraction tries
// independent sources in trust order (embedded page state, structured
// metadata, raw markup) and coalesces fields first-non-nil-wins.
package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const SourceTag = "zameen.com"

const siteBase = "https://www.zameen.com"

// Page wraps one fetched HTML document. The embedded state blob is
// parsed lazily and at most once.
type Page struct {
	URL  string
	body string
	doc  *goquery.Document

	stateParsed bool
	state       map[string]any
}

func NewPage(pageURL string, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Page{URL: pageURL, body: string(body), doc: doc}, nil
}

// State returns the embedded page-state object, or nil when the page
// carries none (or it fails to parse).
func (p *Page) State() map[string]any {
	if !p.stateParsed {
		p.stateParsed = true
		p.state = parseState(p.body)
	}
	return p.state
}

// normalizeURL resolves href against base and strips the fragment.
func normalizeURL(href, base string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		b, _ = url.Parse(siteBase)
	}
	abs := b.ResolveReference(ref)
	abs.Fragment = ""
	return abs.String()
}
