package extract

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
)

// A page may embed several structured-metadata blocks; the one most
// resembling a product/listing wins, and only when its score clears the
// floor. A lone name or URL is not enough to trust a block.
const jsonLDScoreFloor = 4

// bestJSONLD scans every ld+json script on the page and returns the
// highest-scoring listing-like block, or nil.
func bestJSONLD(doc *goquery.Document) map[string]any {
	var best map[string]any
	bestScore := 0

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return
		}
		for _, node := range flattenJSONLD(parsed) {
			if sc := scoreJSONLD(node); sc > bestScore {
				bestScore = sc
				best = node
			}
		}
	})

	if bestScore < jsonLDScoreFloor {
		return nil
	}
	return best
}

// flattenJSONLD unwraps arrays and @graph containers into candidate
// objects.
func flattenJSONLD(parsed any) []map[string]any {
	var out []map[string]any
	switch t := parsed.(type) {
	case []any:
		for _, e := range t {
			out = append(out, flattenJSONLD(e)...)
		}
	case map[string]any:
		out = append(out, t)
		if graph, ok := t["@graph"].([]any); ok {
			for _, e := range graph {
				out = append(out, flattenJSONLD(e)...)
			}
		}
	}
	return out
}

func scoreJSONLD(node map[string]any) int {
	score := 0
	if offers := digMap(node, "offers"); offers != nil {
		score += 2
		if _, ok := offers["price"]; ok {
			score++
		}
	} else if _, ok := node["price"]; ok {
		score += 2
	}
	if s, _ := node["name"].(string); s != "" {
		score += 2
	}
	if s, _ := node["description"].(string); s != "" {
		score++
	}
	if s, _ := node["url"].(string); s != "" {
		score++
	}
	switch t := node["@type"].(type) {
	case string:
		if t == "Product" || t == "RealEstateListing" {
			score += 2
		}
	case []any:
		for _, e := range t {
			if s, _ := e.(string); s == "Product" || s == "RealEstateListing" {
				score += 2
				break
			}
		}
	}
	return score
}

// itemListURLs collects listing URLs from ItemList/CollectionPage
// blocks embedded for search engines.
func itemListURLs(doc *goquery.Document, base string) []string {
	var urls []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return
		}
		for _, node := range flattenJSONLD(parsed) {
			t, _ := node["@type"].(string)
			if t != "ItemList" && t != "CollectionPage" {
				continue
			}
			items, _ := node["itemListElement"].([]any)
			for _, item := range items {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				u, _ := m["url"].(string)
				if u == "" {
					u = digString(m, "item", "url")
				}
				if abs := normalizeURL(u, base); abs != "" {
					urls = append(urls, abs)
				}
			}
		}
	})
	return urls
}
