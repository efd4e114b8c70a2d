// Package analysis provides offline quality metrics for generated newsletter
// drafts: readability scoring, structural validation, and topic extraction.
package analysis

import (
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceExpr = regexp.MustCompile(`[.!?]+`)
	wordExpr     = regexp.MustCompile(`[a-zA-Z']+`)
	headingExpr  = regexp.MustCompile(`(?m)^#{1,3} `)
	linkMdExpr   = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
)

// stopWords are excluded from topic extraction.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "has": true,
	"this": true, "that": true, "with": true, "from": true, "your": true,
	"have": true, "will": true, "more": true, "about": true, "their": true,
	"what": true, "when": true, "which": true, "into": true, "also": true,
	"these": true, "they": true, "been": true, "were": true, "than": true,
	"its": true, "our": true, "how": true, "new": true, "out": true,
}

// ReadabilityScore computes the Flesch reading-ease score for content.
// Higher is easier; typical newsletters land between 50 and 70.
func ReadabilityScore(content string) float64 {
	words := wordExpr.FindAllString(content, -1)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(content)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func countSentences(content string) int {
	n := len(sentenceExpr.FindAllString(content, -1))
	if n == 0 {
		return 1
	}
	return n
}

// countSyllables estimates syllables by counting vowel groups, with the
// usual silent-e adjustment. Minimum one per word.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// Report is the result of a validation pass over a draft.
type Report struct {
	Valid       bool     `json:"valid"`
	WordCount   int      `json:"wordCount"`
	Readability float64  `json:"readability"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Validate checks a draft for structural problems a subscriber would notice.
func Validate(content string) Report {
	words := wordExpr.FindAllString(content, -1)
	report := Report{
		WordCount:   len(words),
		Readability: ReadabilityScore(content),
	}

	if len(words) < 100 {
		report.Issues = append(report.Issues, "content is too short for a newsletter")
	}
	if len(words) > 2500 {
		report.Issues = append(report.Issues, "content is too long for a newsletter")
	}
	if len(headingExpr.FindAllString(content, -1)) == 0 {
		report.Issues = append(report.Issues, "no section headings found")
	}
	if strings.Contains(content, "undefined") || strings.Contains(content, "[object Object]") {
		report.Issues = append(report.Issues, "content contains template artifacts")
	}

	report.Suggestions = Suggestions(content, report.Readability)
	report.Valid = len(report.Issues) == 0
	return report
}

// Suggestions offers editorial improvements without blocking delivery.
func Suggestions(content string, readability float64) []string {
	var out []string
	if readability < 40 {
		out = append(out, "sentences are dense; consider shorter sentences and simpler words")
	}
	if len(linkMdExpr.FindAllString(content, -1)) == 0 {
		out = append(out, "no links found; add source links so readers can go deeper")
	}
	if !strings.Contains(content, "?") {
		out = append(out, "consider a question to engage readers")
	}
	return out
}

// KeyTopics extracts up to limit frequent non-stopword terms, most frequent
// first. Ties break alphabetically for stable output.
func KeyTopics(content string, limit int) []string {
	if limit <= 0 {
		limit = 5
	}

	freq := make(map[string]int)
	for _, w := range wordExpr.FindAllString(strings.ToLower(content), -1) {
		if len(w) < 4 || stopWords[w] {
			continue
		}
		freq[w]++
	}

	topics := make([]string, 0, len(freq))
	for w := range freq {
		topics = append(topics, w)
	}
	sort.Slice(topics, func(i, j int) bool {
		if freq[topics[i]] != freq[topics[j]] {
			return freq[topics[i]] > freq[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

// Summarize returns the first maxSentences sentences of the body, with
// markdown markers stripped. Used for delivery previews.
func Summarize(content string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}

	plain := headingExpr.ReplaceAllString(content, "")
	plain = linkMdExpr.ReplaceAllStringFunc(plain, func(m string) string {
		if end := strings.Index(m, "]"); end > 1 {
			return m[1:end]
		}
		return m
	})
	plain = strings.ReplaceAll(plain, "**", "")
	plain = strings.ReplaceAll(plain, "*", "")

	var sentences []string
	start := 0
	for _, loc := range sentenceExpr.FindAllStringIndex(plain, -1) {
		sentence := strings.TrimSpace(plain[start:loc[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
		if len(sentences) == maxSentences {
			break
		}
	}
	if len(sentences) == 0 {
		return strings.TrimSpace(plain)
	}
	return strings.Join(sentences, " ")
}
