package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text passes through",
			input:    "OpenAI released a new model.",
			expected: "OpenAI released a new model.",
		},
		{
			name:     "html tags stripped",
			input:    "<html><body><p>Hello world</p></body></html>",
			expected: "Hello world",
		},
		{
			name:     "script and style removed",
			input:    "<html><body><script>var x = 1;</script><style>p{color:red}</style><p>Actual content here</p></body></html>",
			expected: "Actual content here",
		},
		{
			name:     "unsubscribe block removed with its markup",
			input:    "<html><body><p>Real story text</p><div><a href=\"#\">Unsubscribe</a></div></body></html>",
			expected: "Real story text",
		},
		{
			name:     "raw urls stripped",
			input:    "Read more at https://example.com/story?id=1 today",
			expected: "Read more at today",
		},
		{
			name:     "date header line dropped",
			input:    "Aug 12, 2025\nThe actual newsletter body.",
			expected: "The actual newsletter body.",
		},
		{
			name:     "weekday header line dropped",
			input:    "Monday briefing\nMarkets rallied on strong earnings.",
			expected: "Markets rallied on strong earnings.",
		},
		{
			name:     "subscribe cta line dropped",
			input:    "Subscribe to our newsletter\nPolicy update coverage continues.",
			expected: "Policy update coverage continues.",
		},
		{
			name:     "horizontal whitespace collapsed",
			input:    "word\t\tspacing    here",
			expected: "word spacing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"<html><body><p>First para</p><p>Second para</p><div>Unsubscribe here</div></body></html>",
		"Plain text with https://example.com link\n\n\n\nand   spacing.",
		"Aug 12, 2025\nMonday\nSurviving content line.",
		"",
	}

	for _, input := range inputs {
		once := Clean(input)
		assert.Equal(t, once, Clean(once), "re-cleaning must be a no-op for %q", input)
	}
}

func TestCleanKeepsMultiParagraphStructure(t *testing.T) {
	input := "<html><body><div><p>Paragraph one.</p></div><div><p>Paragraph two.</p></div></body></html>"
	out := Clean(input)
	assert.Contains(t, out, "Paragraph one.")
	assert.Contains(t, out, "Paragraph two.")
}
