package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// PhrasePicker selects an index in [0, n). The default is rand.Intn; tests
// inject a fixed picker to make rendered output deterministic.
type PhrasePicker func(n int) int

// Template renders a complete markdown newsletter from a voice profile and a
// set of news items without any network calls. It always succeeds, which makes
// it the terminal fallback for every generation path.
type Template struct {
	pick PhrasePicker
	now  func() time.Time
}

var _ ports.TemplateRenderer = (*Template)(nil)

// NewTemplate builds a renderer with randomized phrase selection.
func NewTemplate() *Template {
	return &Template{pick: rand.Intn, now: time.Now}
}

// NewTemplateWithPicker builds a renderer with an injected phrase picker.
func NewTemplateWithPicker(pick PhrasePicker, now func() time.Time) *Template {
	if pick == nil {
		pick = rand.Intn
	}
	if now == nil {
		now = time.Now
	}
	return &Template{pick: pick, now: now}
}

// Render assembles the newsletter. A nil profile renders with defaults; empty
// items produce a short "quiet week" edition instead of an empty body.
func (t *Template) Render(profile *domain.VoiceProfile, items []domain.NewsItem) string {
	tone := domain.ToneProfessional
	topic := "technology"
	feeling := "informed"
	if profile != nil {
		if profile.Tone != "" {
			tone = strings.ToLower(profile.Tone)
		}
		if profile.Topics != "" {
			topic = profile.Topics
		}
		if profile.Feeling != "" {
			feeling = profile.Feeling
		}
	}

	var b strings.Builder

	b.WriteString(t.subjectLine(items, topic))
	b.WriteString("\n\n")
	b.WriteString(t.pickPhrase(greetings, tone))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(lookupPhrase(intros, tone), topic, feeling))
	b.WriteString("\n\n")

	if len(items) == 0 {
		b.WriteString(fmt.Sprintf("It's been a quiet stretch in %s - no major stories crossed my desk this time. I'll be back with a full roundup as soon as the news picks up again.\n\n", topic))
	} else {
		b.WriteString("## 📰 This Week's Highlights\n\n")
		for i, item := range items {
			emoji := sectionEmojis[i%len(sectionEmojis)]
			b.WriteString(fmt.Sprintf("### %s %s\n\n", emoji, item.Title))
			if item.Summary != "" {
				b.WriteString(item.Summary)
				b.WriteString("\n\n")
			}
			b.WriteString(t.pickPhrase(itemCommentaries, tone))
			b.WriteString("\n\n")
			if item.URL != "" {
				b.WriteString(fmt.Sprintf("[Read more](%s)", item.URL))
				if item.Source != "" {
					b.WriteString(fmt.Sprintf(" • *%s*", item.Source))
				}
				b.WriteString("\n\n")
			} else if item.Source != "" {
				b.WriteString(fmt.Sprintf("*Source: %s*\n\n", item.Source))
			}
		}
		b.WriteString(fmt.Sprintf(lookupPhrase(finalCommentaries, tone), topic))
		b.WriteString("\n\n")
	}

	b.WriteString(lookupPhrase(callsToAction, tone))
	b.WriteString("\n\n")
	b.WriteString(t.pickClosing(tone))
	b.WriteString("\n\n---\n\n")
	b.WriteString(t.footer(topic, len(items)))

	return b.String()
}

// subjectLine builds the headline. The first item's title, cut before any
// colon and capped at 50 characters, anchors the subject.
func (t *Template) subjectLine(items []domain.NewsItem, topic string) string {
	if len(items) == 0 {
		return fmt.Sprintf("# 📰 Your %s Update", capitalize(topic))
	}

	lead := items[0].Title
	if idx := strings.Index(lead, ":"); idx > 0 {
		lead = lead[:idx]
	}
	runes := []rune(lead)
	if len(runes) > 50 {
		lead = string(runes[:50])
	}
	return fmt.Sprintf("# 📰 %s", strings.TrimSpace(lead))
}

func (t *Template) pickPhrase(table map[string][]string, tone string) string {
	options, ok := table[tone]
	if !ok || len(options) == 0 {
		options = table[domain.ToneProfessional]
	}
	if len(options) == 1 {
		return options[0]
	}
	return options[t.pick(len(options))]
}

func (t *Template) pickClosing(tone string) string {
	if closing, ok := closings[tone]; ok {
		return closing
	}
	return closings[domain.ToneProfessional]
}

func (t *Template) footer(topic string, itemCount int) string {
	return fmt.Sprintf("*Generated on %s • Topics: %s • Items: %d*\n\n*Powered by SoulThread 🧵*",
		t.now().Format("January 2, 2006"), topic, itemCount)
}

// lookupPhrase fetches a single format string keyed by tone.
func lookupPhrase(table map[string]string, tone string) string {
	if phrase, ok := table[tone]; ok {
		return phrase
	}
	return table[domain.ToneProfessional]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
