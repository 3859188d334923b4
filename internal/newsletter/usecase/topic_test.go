package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicFor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ai newsletter", "The AI Briefing news@aibriefing.io", "Technology"},
		{"brew", "Morning Brew crew@morningbrew.com", "Technology"},
		{"finance", "Bloomberg Markets noreply@bloomberg.net", "Business"},
		{"design", "UX Weekly hello@uxweekly.co", "Design"},
		{"no match", "Cooking Letters chef@letters.example", "General"},
		{"address decides too", "Weekly Letter tips@marketwatch.example", "Business"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, topicFor(tt.input))
		})
	}
}

func TestFallbackLabel(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		body     string
		expected string
	}{
		{
			name:     "proper nouns from subject",
			subject:  "Inside OpenAI Deals this week",
			body:     "",
			expected: "Inside Openai",
		},
		{
			name:     "body head when subject empty",
			subject:  "",
			body:     "Bloomberg reported strong results across every market segment.",
			expected: "Bloomberg",
		},
		{
			name:     "no proper nouns defaults",
			subject:  "all lowercase subject line",
			body:     "and an all lowercase body as well",
			expected: "General",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fallbackLabel(tt.subject, tt.body))
		})
	}
}
