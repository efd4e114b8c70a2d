package mailer

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Newsletter drafts are markdown; email clients want HTML. The conversion
// below covers the subset the generators emit (headings, bold, italics,
// links, list items, rules) rather than full markdown.
var (
	h3Expr     = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Expr     = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Expr     = regexp.MustCompile(`(?m)^# (.+)$`)
	boldExpr   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicExpr = regexp.MustCompile(`\*([^*]+)\*`)
	linkExpr   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	listExpr   = regexp.MustCompile(`(?m)^- (.+)$`)
	ruleExpr   = regexp.MustCompile(`(?m)^---$`)
)

// renderHTML wraps converted markdown in a minimal styled email shell.
func renderHTML(subject, markdown string) string {
	body := html.EscapeString(markdown)

	body = h3Expr.ReplaceAllString(body, "<h3>$1</h3>")
	body = h2Expr.ReplaceAllString(body, "<h2>$1</h2>")
	body = h1Expr.ReplaceAllString(body, "<h1>$1</h1>")
	body = boldExpr.ReplaceAllString(body, "<strong>$1</strong>")
	body = linkExpr.ReplaceAllString(body, `<a href="$2">$1</a>`)
	body = italicExpr.ReplaceAllString(body, "<em>$1</em>")
	body = listExpr.ReplaceAllString(body, "<li>$1</li>")
	body = ruleExpr.ReplaceAllString(body, "<hr>")

	paragraphs := strings.Split(body, "\n\n")
	for i, p := range paragraphs {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "<h") || strings.HasPrefix(trimmed, "<hr") || strings.HasPrefix(trimmed, "<li") {
			paragraphs[i] = trimmed
			continue
		}
		paragraphs[i] = "<p>" + strings.ReplaceAll(trimmed, "\n", "<br>") + "</p>"
	}
	body = strings.Join(paragraphs, "\n")

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #24292f; max-width: 640px; margin: 0 auto; padding: 24px;">
%s
</body>
</html>`, html.EscapeString(subject), body)
}
