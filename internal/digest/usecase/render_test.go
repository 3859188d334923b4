package usecase

import (
	"testing"
	"time"

	"newsly-backend/internal/newsletter/domain"

	"github.com/stretchr/testify/assert"
)

func sampleCards() []domain.DigestCard {
	return []domain.DigestCard{
		{
			Title:       "AI Roundup",
			Sender:      "news@aibriefing.io",
			Teaser:      "Short teaser.",
			LongSummary: "First line of the long summary.\nSecond line of the long summary.",
			Highlights:  []string{"Models got cheaper.", "Agents got better.", "Chips got scarce.", "Labs got funded.", "Fifth one ignored."},
		},
		{
			Title:  "Markets <Weekly>",
			Sender: "desk@markets.example",
			Teaser: "Teaser only, no long tier.",
		},
	}
}

func TestRenderHTML(t *testing.T) {
	doc := RenderHTML(sampleCards(), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, doc, "Tuesday, 1 September 2026")
	assert.Contains(t, doc, "news@aibriefing.io")
	assert.Contains(t, doc, "AI Roundup")

	// At most four highlight bullets per card
	assert.Contains(t, doc, "<li>Models got cheaper.</li>")
	assert.Contains(t, doc, "<li>Labs got funded.</li>")
	assert.NotContains(t, doc, "Fifth one ignored.")

	// Newlines in the body become line breaks
	assert.Contains(t, doc, "First line of the long summary.<br>Second line of the long summary.")

	// Teaser substitutes for a missing long tier, and titles are escaped
	assert.Contains(t, doc, "Teaser only, no long tier.")
	assert.Contains(t, doc, "Markets &lt;Weekly&gt;")
	assert.NotContains(t, doc, "Markets <Weekly>")
}

func TestRenderHTMLEmpty(t *testing.T) {
	doc := RenderHTML(nil, time.Now())
	assert.Contains(t, doc, "No newsletters to report today.")
}

func TestHTMLToText(t *testing.T) {
	doc := RenderHTML(sampleCards(), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	text := HTMLToText(doc)

	assert.NotContains(t, text, "<div")
	assert.NotContains(t, text, "<li>")
	assert.Contains(t, text, "• Models got cheaper.")
	assert.Contains(t, text, "First line of the long summary.\nSecond line of the long summary.")
	assert.Contains(t, text, "Markets <Weekly>")
}

func TestHTMLToTextDeterministic(t *testing.T) {
	doc := RenderHTML(sampleCards(), time.Now())
	assert.Equal(t, HTMLToText(doc), HTMLToText(doc))
}
