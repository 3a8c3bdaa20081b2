package fetch

import (
	"errors"
	"testing"
)

func TestIsBlocked(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{"clean page", "<html><body><h1>5 Marla House</h1></body></html>", false},
		{"captcha", "<html>please solve this CAPTCHA to continue</html>", true},
		{"recaptcha widget", `<div class="g-recaptcha"></div>`, true},
		{"access denied", "<h1>Access Denied</h1>", true},
		{"interstitial", "<title>Pardon Our Interruption</title>", true},
		{"empty body", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBlocked([]byte(tc.body)); got != tc.want {
				t.Errorf("IsBlocked = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Error("nil error reported retryable")
	}
	if !Retryable(ErrBlocked) {
		t.Error("blocked page not retryable")
	}
	if !Retryable(&BadStatusError{Code: 503, URL: "http://x"}) {
		t.Error("bad status not retryable")
	}
	if Retryable(errors.New("extract: malformed search response")) {
		t.Error("plain error reported retryable")
	}
}
