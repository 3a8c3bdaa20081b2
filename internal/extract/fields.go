package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"zameencrawler/internal/domain"
	"zameencrawler/internal/units"
)

// DefaultCurrency applies when a source quotes a price without naming
// the currency.
const DefaultCurrency = "PKR"

// Location hierarchy levels, 0 = country. Level 2 names the city; nodes
// at or below level 3 make up the free-text locality.
const (
	cityLevel = 2
	areaLevel = 3
)

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// numberOf coerces a source value to a finite number, stripping
// thousands separators from strings. Anything else is nil.
func numberOf(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(t)
	case int:
		return finite(float64(t))
	case string:
		cleaned := strings.ReplaceAll(t, ",", "")
		m := numberRe.FindString(cleaned)
		if m == "" {
			return nil
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil
		}
		return finite(f)
	case map[string]any:
		// JSON-LD wraps counts as {"@type": "QuantitativeValue", "value": n}.
		if inner, ok := t["value"]; ok {
			return numberOf(inner)
		}
		return nil
	default:
		return nil
	}
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// purposeOf maps the source's small fixed vocabulary; anything outside
// it is nil.
func purposeOf(v any) *string {
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "for-sale", "sale":
		return strPtr("sale")
	case "for-rent", "rent":
		return strPtr("rent")
	}
	return nil
}

// propertyTypeOf picks from a category array: the level-1 node when
// present, else the second entry, else the last.
func propertyTypeOf(categories []any) *string {
	if len(categories) == 0 {
		return nil
	}
	pick := func() map[string]any {
		for _, c := range categories {
			if m, ok := c.(map[string]any); ok {
				if lvl, ok := m["level"].(float64); ok && int(lvl) == 1 {
					return m
				}
			}
		}
		if len(categories) > 1 {
			if m, ok := categories[1].(map[string]any); ok {
				return m
			}
		}
		m, _ := categories[len(categories)-1].(map[string]any)
		return m
	}()
	if pick == nil {
		return nil
	}
	name, _ := pick["name"].(string)
	if name == "" {
		name, _ = pick["slug"].(string)
	}
	if name == "" {
		return nil
	}
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, "_property")
	return strPtr(name)
}

// cityOf returns the hierarchy node at the city level.
func cityOf(hierarchy []any) *string {
	for _, h := range hierarchy {
		m, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if lvl, ok := m["level"].(float64); ok && int(lvl) == cityLevel {
			if name, _ := m["name"].(string); name != "" {
				return strPtr(name)
			}
		}
	}
	return nil
}

// localityOf joins every hierarchy node at or below the area level,
// most specific last.
func localityOf(hierarchy []any) *string {
	var parts []string
	for _, h := range hierarchy {
		m, ok := h.(map[string]any)
		if !ok {
			continue
		}
		lvl, ok := m["level"].(float64)
		if !ok || int(lvl) < areaLevel {
			continue
		}
		if name, _ := m["name"].(string); name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return strPtr(strings.Join(parts, ", "))
}

// areaOf runs a square-meter area value through the unit normalizer.
func areaOf(v any) (*float64, *string) {
	raw := numberOf(v)
	if raw == nil {
		if m, ok := v.(map[string]any); ok {
			raw = numberOf(m["value"])
		}
	}
	if raw == nil {
		return nil, nil
	}
	return units.Normalize(*raw)
}

// cleanText strips markup (scripts, styles and frames removed first)
// and collapses whitespace; nil when nothing remains.
func cleanText(html string) *string {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	doc.Find("script, style, noscript, iframe").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return nil
	}
	return strPtr(text)
}

// Merge fills dst's nil fields from src, first-non-nil wins.
func Merge(dst, src *domain.Listing) *domain.Listing {
	if dst == nil {
		return src
	}
	if src == nil {
		return dst
	}
	if dst.Title == nil {
		dst.Title = src.Title
	}
	if dst.Price == nil {
		dst.Price = src.Price
	}
	if dst.Currency == nil {
		dst.Currency = src.Currency
	}
	if dst.Bedrooms == nil {
		dst.Bedrooms = src.Bedrooms
	}
	if dst.Bathrooms == nil {
		dst.Bathrooms = src.Bathrooms
	}
	if dst.Area == nil && dst.AreaUnit == nil {
		dst.Area, dst.AreaUnit = src.Area, src.AreaUnit
	}
	if dst.Location == nil {
		dst.Location = src.Location
	}
	if dst.City == nil {
		dst.City = src.City
	}
	if dst.PropertyType == nil {
		dst.PropertyType = src.PropertyType
	}
	if dst.Purpose == nil {
		dst.Purpose = src.Purpose
	}
	if dst.Description == nil {
		dst.Description = src.Description
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.ExternalID == nil {
		dst.ExternalID = src.ExternalID
	}
	return dst
}

func strPtr(s string) *string { return &s }
