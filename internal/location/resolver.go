package location

import (
	"strconv"
	"strings"

	"zameencrawler/internal/domain"
)

// ScoreFloor is the minimum match score a node must clear; below it the
// resolution fails and the caller falls back.
const ScoreFloor = 120

// Resolve matches a free-text query (and an optional city hint) against
// the collected nodes and returns the best one with its score, or nil
// when nothing clears the floor.
func Resolve(query, cityHint string, nodes []domain.LocationNode) (*domain.LocationNode, int) {
	q := normalize(query)
	if q == "" {
		return nil, 0
	}
	city := normalize(cityHint)
	qTokens := strings.Fields(q)
	cityTokens := strings.Fields(city)

	var best *domain.LocationNode
	bestScore := 0
	for i := range nodes {
		s := score(&nodes[i], q, qTokens, cityTokens)
		if s > bestScore {
			bestScore = s
			best = &nodes[i]
		}
	}
	if bestScore < ScoreFloor {
		return nil, bestScore
	}
	return best, bestScore
}

func score(n *domain.LocationNode, q string, qTokens, cityTokens []string) int {
	name := normalize(n.Name)
	hierarchy := normalize(strings.Join(append(append([]string{}, n.Hierarchy...), n.Name), " "))

	s := 0
	if name == q {
		s += 200
	}
	if hierarchy == q {
		s += 150
	}
	if name != q && strings.HasPrefix(q, name) {
		s += 120
	}
	if strings.Contains(hierarchy, q) {
		s += 80
	}
	if containsAll(hierarchy, qTokens) {
		s += 80
	}
	if len(cityTokens) > 0 && containsAll(hierarchy, cityTokens) {
		s += 40
	}
	// Deeper nodes are more specific; break ties in their favor.
	s += 2 * n.Level
	return s
}

func containsAll(text string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// normalize lowercases, strips punctuation and collapses whitespace so
// "DHA Phase-5, Lahore" and "dha phase 5 lahore" compare equal.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func formatID(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
