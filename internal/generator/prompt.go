package generator

import (
	"fmt"
	"strings"

	"soulthread/internal/domain"
)

// systemPrompt frames the assistant as the user's newsletter ghostwriter,
// locked to the voice profile's tone.
func systemPrompt(profile *domain.VoiceProfile) string {
	tone := domain.ToneProfessional
	feeling := "informed"
	if profile != nil {
		if profile.Tone != "" {
			tone = profile.Tone
		}
		if profile.Feeling != "" {
			feeling = profile.Feeling
		}
	}

	var b strings.Builder
	b.WriteString("You are an expert newsletter writer who creates engaging, personalized content.\n\n")
	b.WriteString(fmt.Sprintf("Writing style: %s tone throughout the entire newsletter.\n", tone))
	b.WriteString(fmt.Sprintf("Goal: the reader should finish the newsletter feeling %s.\n\n", feeling))
	b.WriteString("Requirements:\n")
	b.WriteString("- Write in markdown format with clear section headers\n")
	b.WriteString("- Start with a compelling subject line as an H1 heading\n")
	b.WriteString("- Include a warm greeting and brief intro\n")
	b.WriteString("- Cover each news item with your own commentary and analysis\n")
	b.WriteString("- Add a closing section with key takeaways\n")
	b.WriteString("- Keep the total length between 600 and 1000 words\n")
	b.WriteString("- Never invent facts beyond the provided news items\n")
	return b.String()
}

// userPrompt lays out the topic and the news items for the model to cover.
func userPrompt(profile *domain.VoiceProfile, items []domain.NewsItem) string {
	topic := "technology"
	if profile != nil && profile.Topics != "" {
		topic = profile.Topics
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Write this week's %s newsletter covering the following stories:\n\n", topic))
	for i, item := range items {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Title))
		if item.Summary != "" {
			b.WriteString(fmt.Sprintf("   Summary: %s\n", item.Summary))
		}
		if item.Source != "" {
			b.WriteString(fmt.Sprintf("   Source: %s\n", item.Source))
		}
		if item.URL != "" {
			b.WriteString(fmt.Sprintf("   Link: %s\n", item.URL))
		}
		b.WriteString("\n")
	}
	if len(items) == 0 {
		b.WriteString("No news items were available this week. Write a short edition acknowledging the quiet week and sharing evergreen insights on the topic.\n")
	}
	if profile != nil && profile.Analysis != nil && len(profile.Analysis.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("Vocabulary the reader's own writing favors: %s.\n", strings.Join(profile.Analysis.Keywords, ", ")))
	}
	return b.String()
}
