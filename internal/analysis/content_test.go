package analysis

import (
	"strings"
	"testing"
)

func TestReadabilityScore(t *testing.T) {
	t.Parallel()

	simple := "The cat sat. The dog ran. We like pets. They are fun."
	dense := "Notwithstanding extraordinary organizational interdependencies, multidimensional infrastructural considerations necessitate comprehensive transformational recalibration."

	simpleScore := ReadabilityScore(simple)
	denseScore := ReadabilityScore(dense)

	if simpleScore <= denseScore {
		t.Fatalf("simple text should score higher: simple=%f dense=%f", simpleScore, denseScore)
	}
	if simpleScore < 0 || simpleScore > 100 {
		t.Fatalf("score out of range: %f", simpleScore)
	}
	if got := ReadabilityScore(""); got != 0 {
		t.Fatalf("empty content should score 0, got %f", got)
	}
}

func TestCountSyllables(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"cat":        1,
		"hello":      2,
		"newsletter": 3,
		"idea":       2,
		"the":        1,
	}
	for word, want := range cases {
		if got := countSyllables(word); got != want {
			t.Fatalf("countSyllables(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("# Weekly Roundup\n\n## Stories\n\n")
	for i := 0; i < 30; i++ {
		b.WriteString("This is a sentence with enough words to pad the draft out properly. ")
	}
	b.WriteString("\n\nCheck the [details](https://ex.com). What do you think?\n")

	report := Validate(b.String())
	if !report.Valid {
		t.Fatalf("expected valid report, got issues: %v", report.Issues)
	}
	if report.WordCount < 100 {
		t.Fatalf("word count too low: %d", report.WordCount)
	}
}

func TestValidateFlagsProblems(t *testing.T) {
	t.Parallel()

	report := Validate("tiny draft with undefined content")
	if report.Valid {
		t.Fatal("short, headingless draft must be invalid")
	}

	var found struct{ short, headings, artifacts bool }
	for _, issue := range report.Issues {
		switch {
		case strings.Contains(issue, "too short"):
			found.short = true
		case strings.Contains(issue, "headings"):
			found.headings = true
		case strings.Contains(issue, "artifacts"):
			found.artifacts = true
		}
	}
	if !found.short || !found.headings || !found.artifacts {
		t.Fatalf("expected short/headings/artifacts issues, got %v", report.Issues)
	}
}

func TestKeyTopics(t *testing.T) {
	t.Parallel()

	content := "Kubernetes clusters scale well. Kubernetes operators manage clusters. Observability matters for clusters."
	topics := KeyTopics(content, 3)

	if len(topics) == 0 || topics[0] != "clusters" {
		t.Fatalf("most frequent term should lead, got %v", topics)
	}
	if len(topics) > 3 {
		t.Fatalf("limit not honored: %v", topics)
	}
	for _, topic := range topics {
		if stopWords[topic] {
			t.Fatalf("stop word leaked into topics: %q", topic)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	content := "# Head\n\nFirst sentence here. Second sentence follows. Third one too. Fourth should be dropped."
	got := Summarize(content, 3)

	if strings.Contains(got, "Fourth") {
		t.Fatalf("summary should stop at 3 sentences: %q", got)
	}
	if !strings.Contains(got, "First sentence here.") {
		t.Fatalf("summary missing lead sentence: %q", got)
	}
	if strings.Contains(got, "#") {
		t.Fatalf("markdown markers should be stripped: %q", got)
	}
}
