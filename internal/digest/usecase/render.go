package usecase

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"newsly-backend/internal/newsletter/domain"
)

// RenderHTML produces the digest email document: one block per card with
// sender, title, up to four highlight bullets and the long-form summary
// (teaser when the long tier is empty), newlines rendered as line breaks.
func RenderHTML(cards []domain.DigestCard, reportDate time.Time) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><body style=\"font-family:Arial,Helvetica,sans-serif;background:#f5f5f5;margin:0;padding:24px;\">")
	sb.WriteString("<div style=\"max-width:640px;margin:0 auto;\">")
	sb.WriteString("<h1 style=\"color:#222;\">Your Daily Digest</h1>")
	sb.WriteString(fmt.Sprintf("<p style=\"color:#666;\">%s</p>", reportDate.Format("Monday, 2 January 2006")))

	if len(cards) == 0 {
		sb.WriteString("<p>No newsletters to report today.</p>")
	}

	for _, card := range cards {
		sb.WriteString("<div style=\"background:#fff;border-radius:8px;padding:20px;margin-bottom:16px;\">")
		sb.WriteString(fmt.Sprintf("<div style=\"color:#888;font-size:12px;\">%s</div>", html.EscapeString(card.Sender)))
		sb.WriteString(fmt.Sprintf("<h2 style=\"margin:8px 0;color:#222;\">%s</h2>", html.EscapeString(card.Title)))

		if len(card.Highlights) > 0 {
			sb.WriteString("<ul>")
			for i, hl := range card.Highlights {
				if i >= 4 {
					break
				}
				sb.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(hl)))
			}
			sb.WriteString("</ul>")
		}

		body := card.LongSummary
		if strings.TrimSpace(body) == "" {
			body = card.Teaser
		}
		body = strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
		sb.WriteString(fmt.Sprintf("<p style=\"color:#333;line-height:1.5;\">%s</p>", body))
		sb.WriteString("</div>")
	}

	sb.WriteString("</div></body></html>")
	return sb.String()
}

var (
	liOpenRe   = regexp.MustCompile(`(?i)<li[^>]*>`)
	brRe       = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndRe = regexp.MustCompile(`(?i)</(p|div|h1|h2|h3|ul|li)>`)
	anyTagRe   = regexp.MustCompile(`<[^>]+>`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText strips the rendered document into its plain-text alternative:
// list items become bullet lines, line breaks become newlines, every other
// tag is removed.
func HTMLToText(doc string) string {
	out := liOpenRe.ReplaceAllString(doc, "• ")
	out = brRe.ReplaceAllString(out, "\n")
	out = blockEndRe.ReplaceAllString(out, "\n")
	out = anyTagRe.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = blankRe.ReplaceAllString(out, "\n\n")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
