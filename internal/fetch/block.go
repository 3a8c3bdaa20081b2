package fetch

import "strings"

// blockVocabulary are the phrases an anti-bot interstitial leaks into
// an otherwise-200 body. Matched case-insensitively before any
// structural parsing happens.
var blockVocabulary = []string{
	"captcha",
	"recaptcha",
	"access denied",
	"pardon our interruption",
}

// IsBlocked reports whether the fetched body is a block/CAPTCHA page.
func IsBlocked(body []byte) bool {
	lower := strings.ToLower(string(body))
	for _, phrase := range blockVocabulary {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
