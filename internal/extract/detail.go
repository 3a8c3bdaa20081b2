package extract

import (
	"net/url"
	"strings"

	"zameencrawler/internal/domain"
)

// Source is one extraction strategy. It returns a partial listing, or
// nil when the page offers nothing for this source.
type Source interface {
	Extract(p *Page) *domain.Listing
}

// detailSources in trust order: the embedded page-state blob is
// authoritative, structured metadata fills gaps, raw markup is last.
var detailSources = []Source{
	pageStateSource{},
	jsonLDSource{},
	markupSource{},
}

// Detail extracts one listing record from a detail page, coalescing the
// sources' fields and finally any partial record captured during
// list-page discovery.
func Detail(p *Page, partial *domain.Listing) *domain.Listing {
	var rec *domain.Listing
	for _, src := range detailSources {
		rec = Merge(rec, src.Extract(p))
	}
	rec = Merge(rec, partial)
	if rec == nil {
		rec = &domain.Listing{}
	}
	if rec.URL == "" {
		rec.URL = p.URL
	}
	if rec.ExternalID == nil {
		if id := DetailURLID(p.URL); id != "" {
			rec.ExternalID = strPtr(id)
		}
	}
	if rec.Price != nil && rec.Currency == nil {
		rec.Currency = strPtr(DefaultCurrency)
	}
	rec.Source = SourceTag
	return rec
}

type pageStateSource struct{}

func (pageStateSource) Extract(p *Page) *domain.Listing {
	state := p.State()
	if state == nil {
		return nil
	}
	prop := digMap(state, "property")
	if prop == nil {
		prop = digMap(state, "listing")
	}
	if prop == nil {
		return nil
	}
	// The blob counts as a source only when it carries a listing id.
	if stringOf(prop["id"]) == "" && stringOf(prop["externalID"]) == "" {
		return nil
	}
	return listingFromObject(prop, p.URL)
}

type jsonLDSource struct{}

func (jsonLDSource) Extract(p *Page) *domain.Listing {
	node := bestJSONLD(p.doc)
	if node == nil {
		return nil
	}
	rec := &domain.Listing{}
	if name, _ := node["name"].(string); name != "" {
		rec.Title = strPtr(name)
	}
	if offers := digMap(node, "offers"); offers != nil {
		rec.Price = numberOf(offers["price"])
		if c, _ := offers["priceCurrency"].(string); c != "" {
			rec.Currency = strPtr(c)
		}
	} else {
		rec.Price = numberOf(node["price"])
	}
	rec.Bedrooms = numberOf(node["numberOfRooms"])
	rec.Bathrooms = numberOf(node["numberOfBathroomsTotal"])
	rec.Area, rec.AreaUnit = jsonLDArea(digMap(node, "floorSize"))
	if addr := digMap(node, "address"); addr != nil {
		if s, _ := addr["streetAddress"].(string); s != "" {
			rec.Location = strPtr(s)
		}
		if s, _ := addr["addressLocality"].(string); s != "" {
			rec.City = strPtr(s)
		}
	}
	if d, _ := node["description"].(string); d != "" {
		rec.Description = cleanText(d)
	}
	if u, _ := node["url"].(string); u != "" {
		rec.URL = normalizeURL(u, p.URL)
	}
	return rec
}

// jsonLDArea keeps the block's own declared unit: the unit code/text is
// mapped to sqm or sqft by substring, never run through the normalizer.
func jsonLDArea(size map[string]any) (*float64, *string) {
	if size == nil {
		return nil, nil
	}
	v := numberOf(size["value"])
	if v == nil {
		v = numberOf(size["text"])
	}
	if v == nil {
		return nil, nil
	}
	code, _ := size["unitCode"].(string)
	if code == "" {
		code, _ = size["unitText"].(string)
	}
	switch code = strings.ToLower(code); {
	case strings.Contains(code, "ft"):
		return v, strPtr("sqft")
	case strings.Contains(code, "m"):
		return v, strPtr("sqm")
	}
	return v, nil
}

type markupSource struct{}

// markupSource only supplies what nothing better could: the heading (or
// document title) and the page's purpose as hinted by its URL.
func (markupSource) Extract(p *Page) *domain.Listing {
	rec := &domain.Listing{}
	title := strings.TrimSpace(p.doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(p.doc.Find("title").First().Text())
	}
	if title != "" {
		rec.Title = strPtr(title)
	}
	rec.Purpose = urlPurpose(p.URL)
	if rec.Title == nil && rec.Purpose == nil {
		return nil
	}
	return rec
}

// urlPurpose reads the purpose hint from the URL's path tokens. A plain
// substring match would misread words like "current" as rentals.
func urlPurpose(raw string) *string {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	tokens := strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "rent"):
			return strPtr("rent")
		case strings.HasPrefix(tok, "sale"), tok == "buy":
			return strPtr("sale")
		}
	}
	return nil
}

// listingFromObject applies the field derivation rules to one
// listing-shaped object, either the page-state property or a search hit.
func listingFromObject(obj map[string]any, baseURL string) *domain.Listing {
	rec := &domain.Listing{}
	if t := stringOf(obj["title"]); t != "" {
		rec.Title = strPtr(t)
	} else if t := stringOf(obj["name"]); t != "" {
		rec.Title = strPtr(t)
	}
	rec.Price = numberOf(obj["price"])
	if c := stringOf(obj["currency"]); c != "" {
		rec.Currency = strPtr(c)
	}
	rec.Bedrooms = numberOf(firstOf(obj, "rooms", "bedrooms", "beds"))
	rec.Bathrooms = numberOf(firstOf(obj, "baths", "bathrooms"))
	rec.Area, rec.AreaUnit = areaOf(obj["area"])
	hierarchy, _ := obj["location"].([]any)
	rec.City = cityOf(hierarchy)
	rec.Location = localityOf(hierarchy)
	categories, _ := obj["category"].([]any)
	if categories == nil {
		categories, _ = obj["type"].([]any)
	}
	rec.PropertyType = propertyTypeOf(categories)
	rec.Purpose = purposeOf(obj["purpose"])
	if d := stringOf(obj["description"]); d != "" {
		rec.Description = cleanText(d)
	}
	if id := stringOf(firstOf(obj, "externalID", "objectID", "id")); id != "" {
		rec.ExternalID = strPtr(id)
	}
	if u := stringOf(firstOf(obj, "url", "shareUrl")); u != "" {
		rec.URL = normalizeURL(u, baseURL)
	}
	return rec
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if n := finite(t); n != nil {
			return trimFloat(t)
		}
	}
	return ""
}
