package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "boundary before uppercase",
			input:    "First sentence. Second sentence.",
			expected: []string{"First sentence.", "Second sentence."},
		},
		{
			name:     "boundary before digit",
			input:    "Revenue grew fast. 2024 was a record year.",
			expected: []string{"Revenue grew fast.", "2024 was a record year."},
		},
		{
			name:     "no split before lowercase",
			input:    "Approx. three items shipped.",
			expected: []string{"Approx. three items shipped."},
		},
		{
			name:     "exclamation and question boundaries",
			input:    "Buy now! Why wait? Deals end soon.",
			expected: []string{"Buy now!", "Why wait?", "Deals end soon."},
		},
		{
			name:     "trailing text without terminator kept",
			input:    "Done. And one more thing",
			expected: []string{"Done.", "And one more thing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.input)
			for i := range got {
				got[i] = strings.TrimSpace(got[i])
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScoreSentencePrefersKeywords(t *testing.T) {
	keyword := "OpenAI released a new model update for enterprise customers today."
	plain := "Here is a sentence of comparable length with nothing special inside."

	assert.Greater(t, scoreSentence(keyword), scoreSentence(plain))
}

func TestPickSentencesExcludesBoilerplateRegardlessOfScore(t *testing.T) {
	text := "Buy now! Unsubscribe here. OpenAI released a new model update for enterprise customers today."

	picked := pickSentences(text, 4, 10)

	assert.NotEmpty(t, picked)
	for _, s := range picked {
		assert.NotContains(t, strings.ToLower(s), "unsubscribe")
	}
	// The keyword-bearing sentence outranks the short ad fragment
	assert.Contains(t, picked[0], "model update")
}

func TestPickSentencesDeduplicates(t *testing.T) {
	sent := "The research report covers the funding market in depth and detail for investors."
	text := sent + " " + sent

	picked := pickSentences(text, 4, 10)
	assert.Len(t, picked, 1)
}

func TestPickSentencesRespectsCapAndMinLen(t *testing.T) {
	text := "Tiny. The first update covers security policy changes in the market today. " +
		"The second update covers climate research funding across the economy. " +
		"The third update covers a merger and an acquisition in tech. " +
		"The fourth update covers a product launch and a new feature set. " +
		"The fifth update covers earnings and a discount campaign this week."

	picked := pickSentences(text, 4, 40)
	assert.Len(t, picked, 4)
	for _, s := range picked {
		assert.NotEqual(t, "Tiny.", s)
	}
}

func TestBuildFallbacks(t *testing.T) {
	t.Run("highlights bounded and teaser joins them", func(t *testing.T) {
		text := "The market report shows strong earnings this quarter for every sector. " +
			"A new policy update changes privacy rules for large platforms in Europe. " +
			"Research funding for climate programs doubled over the last fiscal year. " +
			"The acquisition closed after months of negotiation with regulators. " +
			"A fresh feature launch brings the security roadmap forward by a quarter."

		teaser, long, highlights := buildFallbacks(text)

		assert.NotEmpty(t, teaser)
		assert.NotEmpty(t, long)
		assert.LessOrEqual(t, len(highlights), 4)
		assert.Equal(t, strings.Join(highlights, " "), teaser)
	})

	t.Run("short unstructured text truncates to teaser", func(t *testing.T) {
		text := "no sentences here just words"

		teaser, long, highlights := buildFallbacks(text)

		assert.Equal(t, text, teaser)
		assert.Equal(t, teaser, long)
		assert.Empty(t, highlights)
	})

	t.Run("teaser capped at 300 runes when no highlights", func(t *testing.T) {
		// Every sentence too short to qualify as a highlight
		text := strings.TrimSpace(strings.Repeat("Go now. ", 60))

		teaser, _, highlights := buildFallbacks(text)

		assert.Empty(t, highlights)
		assert.LessOrEqual(t, len([]rune(teaser)), 301) // 300 + ellipsis
		assert.True(t, strings.HasSuffix(teaser, "…"))
	})

	t.Run("long tier richer than teaser for long degenerate sources", func(t *testing.T) {
		text := strings.TrimSpace(strings.Repeat("Go now. ", 300)) // > 1500 runes

		teaser, long, _ := buildFallbacks(text)

		assert.NotEqual(t, teaser, long)
		assert.Greater(t, len([]rune(long)), len([]rune(teaser)))
	})
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab…", truncateRunes("abcdef", 2))
	// Rune-aware, not byte-aware
	assert.Equal(t, "çğü…", truncateRunes("çğüşöı", 3))
}

func TestDeriveHighlights(t *testing.T) {
	t.Run("from teaser", func(t *testing.T) {
		got := deriveHighlights("First point. Second point.", "", 4)
		assert.Equal(t, []string{"First point.", "Second point."}, got)
	})

	t.Run("falls back to long summary", func(t *testing.T) {
		got := deriveHighlights("", "Only the long tier. Has sentences.", 4)
		assert.Len(t, got, 2)
	})

	t.Run("capped at max", func(t *testing.T) {
		got := deriveHighlights("A one. B two. C three. D four. E five. F six.", "", 4)
		assert.Len(t, got, 4)
	})

	t.Run("single unterminated fragment survives as one highlight", func(t *testing.T) {
		got := deriveHighlights("Sender: a@x.com", "", 4)
		assert.Equal(t, []string{"Sender: a@x.com"}, got)
	})
}
