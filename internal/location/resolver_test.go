package location

import (
	"testing"

	"zameencrawler/internal/domain"
)

func TestResolveExactNameBeatsSubstring(t *testing.T) {
	nodes := []domain.LocationNode{
		{Name: "DHA Defence Phase 1", Slug: "dha-defence-phase-1", Level: 3, Hierarchy: []string{"Pakistan", "Punjab", "Lahore"}},
		{Name: "DHA Defence", Slug: "dha-defence", Level: 3, Hierarchy: []string{"Pakistan", "Punjab", "Lahore"}},
	}
	got, _ := Resolve("DHA Defence", "", nodes)
	if got == nil {
		t.Fatal("Resolve returned nil")
	}
	if got.Slug != "dha-defence" {
		t.Errorf("resolved %q, want exact-name node dha-defence", got.Slug)
	}
}

func TestResolveBelowFloorFails(t *testing.T) {
	nodes := []domain.LocationNode{
		{Name: "Gulberg", Slug: "gulberg", Level: 3},
	}
	got, score := Resolve("completely unrelated place", "", nodes)
	if got != nil {
		t.Errorf("resolved %q with score %d, want failure", got.Slug, score)
	}
}

func TestResolveCityHintBreaksTies(t *testing.T) {
	nodes := []domain.LocationNode{
		{Name: "Bahria Town", Slug: "bahria-town-rwp", Level: 3, Hierarchy: []string{"Pakistan", "Punjab", "Rawalpindi"}},
		{Name: "Bahria Town", Slug: "bahria-town-lhr", Level: 3, Hierarchy: []string{"Pakistan", "Punjab", "Lahore"}},
	}
	got, _ := Resolve("Bahria Town", "Lahore", nodes)
	if got == nil {
		t.Fatal("Resolve returned nil")
	}
	if got.Slug != "bahria-town-lhr" {
		t.Errorf("resolved %q, want city-hinted bahria-town-lhr", got.Slug)
	}
}

func TestCollectBoundedAndDedupedBySlug(t *testing.T) {
	node := map[string]any{"name": "Lahore", "slug": "lahore", "id": float64(1), "level": float64(2)}
	// A cyclic graph must not hang the scan.
	cyclic := map[string]any{"city": node}
	cyclic["self"] = cyclic
	root := map[string]any{
		"a": cyclic,
		"b": []any{node, map[string]any{"name": "Lahore", "slug": "lahore"}},
	}
	nodes := Collect(root)
	if len(nodes) != 1 {
		t.Fatalf("collected %d nodes, want 1 (deduped by slug)", len(nodes))
	}
	if nodes[0].ExternalID != "1" || nodes[0].Level != 2 {
		t.Errorf("collected node = %+v, want id 1 level 2", nodes[0])
	}
}
