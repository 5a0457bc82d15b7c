package amazon

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Both locales the marketplace serves the interstitial in.
var challengeTexts = []string{
	"Continuar comprando",
	"Continue shopping",
}

// hasChallenge reports whether doc is an anti-bot interstitial rather than
// product content, recognized by its continue-shopping control. Absence of
// the marker is the expected case, not an error.
func hasChallenge(doc *goquery.Document) bool {
	found := false
	doc.Find("button.a-button-text, span.a-button-text").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		for _, marker := range challengeTexts {
			if strings.Contains(text, marker) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
