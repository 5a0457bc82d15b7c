package amazon

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

var asinPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?]|$)`)

// CanonicalURL strips the referrer path segment and all query parameters
// from a product URL, producing the canonical key for the product.
// Normalization is best effort: a URL that cannot be parsed is returned
// unchanged so a malformed input never blocks the scrape.
func CanonicalURL(rawURL string) string {
	return removeQueryParams(removeRefSegment(rawURL))
}

func removeRefSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		slog.Debug("url normalization failed", slog.String("url", rawURL), slog.Any("error", err))
		return rawURL
	}

	segments := strings.Split(parsed.Path, "/")
	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		if strings.HasPrefix(segment, "ref=") {
			continue
		}
		kept = append(kept, segment)
	}
	parsed.Path = strings.Join(kept, "/")
	return parsed.String()
}

func removeQueryParams(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		slog.Debug("url normalization failed", slog.String("url", rawURL), slog.Any("error", err))
		return rawURL
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

// ExtractASIN pulls the product identifier out of a product page URL.
func ExtractASIN(rawURL string) (string, error) {
	match := asinPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", fmt.Errorf("could not extract product ASIN from URL: %s", rawURL)
	}
	return match[1], nil
}
