package extract

import "testing"

func TestJSONObjectAfterRespectsStringsAndNesting(t *testing.T) {
	body := `<script>window.state = {"a":{"b":1},"c":"}"} ;trailing junk</script>`
	got, ok := JSONObjectAfter(body, "window.state")
	if !ok {
		t.Fatal("JSONObjectAfter found nothing")
	}
	want := `{"a":{"b":1},"c":"}"}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJSONObjectAfterEscapedQuote(t *testing.T) {
	body := `window.state = {"msg":"he said \"}\"","n":2}`
	got, ok := JSONObjectAfter(body, "window.state")
	if !ok {
		t.Fatal("JSONObjectAfter found nothing")
	}
	if got != `{"msg":"he said \"}\"","n":2}` {
		t.Errorf("got %q", got)
	}
}

func TestJSONObjectAfterMissingOrUnbalanced(t *testing.T) {
	if _, ok := JSONObjectAfter("no marker here", "window.state"); ok {
		t.Error("found object without marker")
	}
	if _, ok := JSONObjectAfter(`window.state = {"open": {`, "window.state"); ok {
		t.Error("accepted unbalanced object")
	}
}
