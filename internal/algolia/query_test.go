package algolia

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"zameencrawler/internal/domain"
)

var dummyCreds = domain.AlgoliaCredentials{
	AppID:       "TESTAPP",
	APIKey:      "key",
	IndexName:   "listings",
	Filters:     `purpose:"for-sale"`,
	HitsPerPage: 25,
}

func TestNewQueryTask(t *testing.T) {
	task, err := NewQueryTask(&dummyCreds, 3)
	if err != nil {
		t.Fatalf("NewQueryTask: %v", err)
	}
	if task.Label != domain.LabelAlgoliaQuery || task.Method != "POST" {
		t.Errorf("task label/method = %s/%s", task.Label, task.Method)
	}
	if task.PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", task.PageNumber)
	}
	if !strings.Contains(task.URL, "TESTAPP-dsn.algolia.net") || !strings.Contains(task.URL, "/listings/") {
		t.Errorf("unexpected endpoint %q", task.URL)
	}
	if task.Headers["X-Algolia-Application-Id"] != "TESTAPP" {
		t.Errorf("missing app id header")
	}

	var body struct {
		Params string `json:"params"`
	}
	if err := json.Unmarshal(task.Body, &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	params, err := url.ParseQuery(body.Params)
	if err != nil {
		t.Fatalf("params not a query string: %v", err)
	}
	if params.Get("page") != "2" {
		t.Errorf("wire page = %q, want 0-based 2", params.Get("page"))
	}
	if params.Get("filters") != dummyCreds.Filters {
		t.Errorf("filters = %q", params.Get("filters"))
	}
}

func TestNewQueryTaskRejectsIncompleteCredentials(t *testing.T) {
	if _, err := NewQueryTask(&domain.AlgoliaCredentials{AppID: "x"}, 1); err == nil {
		t.Error("expected error for incomplete credentials")
	}
}
