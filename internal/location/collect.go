// Package location collects the site's location hierarchy from a
// bootstrap page's state object and resolves free-text queries against it.
package location

import "zameencrawler/internal/domain"

// Traversal caps. The state object is an arbitrary nested graph of
// unknown (possibly adversarial) size; a worklist with hard visit and
// collection limits guarantees termination.
const (
	maxVisited   = 50000
	maxCollected = 5000
)

// Collect scans an arbitrary decoded-JSON object graph breadth-first and
// gathers everything shaped like a location node, keeping at most one
// node per distinct slug.
func Collect(root any) []domain.LocationNode {
	var nodes []domain.LocationNode
	bySlug := make(map[string]struct{})

	work := []any{root}
	visited := 0
	for len(work) > 0 && visited < maxVisited && len(nodes) < maxCollected {
		cur := work[0]
		work = work[1:]
		visited++

		switch v := cur.(type) {
		case map[string]any:
			if n, ok := nodeFrom(v); ok {
				if _, dup := bySlug[n.Slug]; !dup {
					bySlug[n.Slug] = struct{}{}
					nodes = append(nodes, n)
				}
			}
			for _, child := range v {
				work = append(work, child)
			}
		case []any:
			work = append(work, v...)
		}
	}
	return nodes
}

// nodeFrom recognizes a location node: a map carrying at least a name
// and a slug. Level and the hierarchy chain are optional.
func nodeFrom(m map[string]any) (domain.LocationNode, bool) {
	name, _ := m["name"].(string)
	slug := stringField(m, "slug")
	if name == "" || slug == "" {
		return domain.LocationNode{}, false
	}
	n := domain.LocationNode{
		Name:       name,
		Slug:       slug,
		ExternalID: stringField(m, "externalID", "external_id", "id"),
		Level:      intField(m, "level"),
	}
	if h, ok := m["hierarchy"].([]any); ok {
		for _, e := range h {
			switch t := e.(type) {
			case string:
				n.Hierarchy = append(n.Hierarchy, t)
			case map[string]any:
				if hn, ok := t["name"].(string); ok && hn != "" {
					n.Hierarchy = append(n.Hierarchy, hn)
				}
			}
		}
	}
	return n, true
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return formatID(v)
		}
	}
	return ""
}

func intField(m map[string]any, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}
