package extract

import (
	"testing"

	"zameencrawler/internal/domain"
)

const listPage = `<html><head><script>
window.state = {"algolia":{"appId":"APP123","apiKey":"k","indexName":"listings","filters":"purpose:\"for-sale\"","hitsPerPage":25},
"hits":[
 {"objectID":"111","title":"House A","price":1000,"url":"/Property/a-111.html"},
 {"objectID":"222","title":"House B","price":2000,"url":"/Property/b-222.html"},
 {"objectID":"333","title":"House C","price":3000,"url":"/Property/c-333.html"}
]};
</script></head><body>
<a href="/Property/b-222.html">duplicate of a hit</a>
<a href="/Property/d-444.html">fresh anchor</a>
<a href="/Property/d-444.html">same anchor twice</a>
<a href="https://www.zameen.com/blog/Property/e-555.html">blog link</a>
<a href="https://share.example.com/post?u=https%3A%2F%2Fwww.zameen.com%2FProperty%2Ff-666.html">share wrapper</a>
<a href="https://www.zameen.com/about.html">about</a>
<a rel="next" href="/Homes/Lahore-1-2.html">Next</a>
</body></html>`

func TestListCombinesAndDedupesCandidates(t *testing.T) {
	p, err := NewPage("https://www.zameen.com/Homes/Lahore-1-1.html", []byte(listPage))
	if err != nil {
		t.Fatal(err)
	}
	res := List(p)

	var keys []string
	for _, c := range res.Candidates {
		keys = append(keys, c.IdentityKey)
	}
	want := []string{"111", "222", "333", "444", "666"}
	if len(keys) != len(want) {
		t.Fatalf("candidates = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("candidates = %v, want %v (page order, first wins)", keys, want)
		}
	}

	// Hits carry partial records; anchors do not.
	if res.Candidates[0].Partial == nil || res.Candidates[0].Partial.Title == nil || *res.Candidates[0].Partial.Title != "House A" {
		t.Errorf("hit candidate lost its partial record")
	}
	if res.Candidates[3].Partial != nil {
		t.Errorf("anchor candidate grew a partial record")
	}

	if res.Algolia == nil || res.Algolia.AppID != "APP123" || res.Algolia.HitsPerPage != 25 {
		t.Errorf("algolia credentials = %+v", res.Algolia)
	}
	if res.NextURL != "https://www.zameen.com/Homes/Lahore-1-2.html" {
		t.Errorf("next url = %q", res.NextURL)
	}
}

func TestAlgoliaHits(t *testing.T) {
	body := []byte(`{"hits":[{"objectID":"9","title":"Hit","price":5,"url":"https://www.zameen.com/Property/h-9.html"}],"nbPages":7}`)
	cands, nbPages, err := AlgoliaHits(body, &domain.AlgoliaCredentials{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].IdentityKey != "9" {
		t.Fatalf("candidates = %+v", cands)
	}
	if nbPages != 7 {
		t.Errorf("nbPages = %d", nbPages)
	}
}

func TestAlgoliaHitsMalformed(t *testing.T) {
	if _, _, err := AlgoliaHits([]byte("<html>not json"), nil); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestIsDetailURL(t *testing.T) {
	cases := map[string]bool{
		"https://www.zameen.com/Property/dha-42118861.html": true,
		"https://www.zameen.com/Homes/Lahore-1-1.html":      false,
		"https://www.zameen.com/Property/no-id.html":        false,
	}
	for u, want := range cases {
		if got := IsDetailURL(u); got != want {
			t.Errorf("IsDetailURL(%q) = %v, want %v", u, got, want)
		}
	}
}
