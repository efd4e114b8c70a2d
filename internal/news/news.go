// Package news aggregates stories from heterogeneous external providers and
// normalizes them into domain.NewsItem values. Each provider is isolated: a
// failing or unconfigured provider contributes zero items and never aborts the
// aggregate fetch.
package news

import (
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	summaryLimit = 200
	userAgent    = "soulthread/1.0"
)

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// truncateSummary bounds a summary so downstream prompts and templates stay
// within budget. Appends an ellipsis only when content was cut.
func truncateSummary(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
