package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"newsly-backend/internal/newsletter/domain"
)

// OpenAIService implements SummarizerService against an OpenAI-compatible
// chat completions endpoint.
type OpenAIService struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	lang        string

	client *http.Client
}

type Config struct {
	APIKey      string
	BaseURL     string // e.g. "https://api.openai.com/v1"
	Model       string // e.g. "gpt-4o-mini"
	Temperature float64
	Lang        string // default summary language: "tr" or "en"
}

func NewOpenAIService(cfg Config) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the OpenAI provider")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIService{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		lang:        strings.ToLower(cfg.Lang),
		client:      &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chat performs one chat completion call and returns the model text.
func (s *OpenAIService) chat(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	payload := map[string]interface{}{
		"model":       s.model,
		"messages":    messages,
		"temperature": s.temperature,
		"max_tokens":  maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai API error (%d): %s", resp.StatusCode, string(respBody))
	}

	// Decode defensively instead of trusting the schema
	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if choices, ok := result["choices"].([]interface{}); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]interface{}); ok {
			if message, ok := choice["message"].(map[string]interface{}); ok {
				if content, ok := message["content"].(string); ok {
					return strings.TrimSpace(content), nil
				}
			}
		}
	}
	return "", fmt.Errorf("no completion returned")
}

// SummarizeText summarizes text into 2-3 sentences in the configured default
// language.
func (s *OpenAIService) SummarizeText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	system := "You are a concise content summarizer. Summarize the text in 2-3 clear sentences in English."
	if strings.HasPrefix(s.lang, "tr") {
		system = "Sen bir içerik özetleyicisisin. Metni kısa, net ve anlamlı biçimde 2-3 cümleyle özetle."
	}

	return s.chat(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: text},
	}, 300)
}

// SummarizeTiered requests a strict-JSON {title, teaser, long} summary. Any
// failure along the way (network, non-JSON output, missing keys) degrades to
// the plain short summary; an error comes back only when that fails too.
func (s *OpenAIService) SummarizeTiered(ctx context.Context, content, sender, dateISO string) (*domain.SummaryResult, error) {
	if strings.TrimSpace(content) == "" {
		return &domain.SummaryResult{Title: orDefault(sender, "Newsletter")}, nil
	}

	system := "You are a sharp newsletter editor. IMPORTANT: Detect and KEEP the source language exactly; DO NOT translate." +
		" Do not add ads, unsubscribes, or tracking fluff."

	prompt := fmt.Sprintf(`Source: %s
Date: %s

Write output in the SAME language as the source text. DO NOT translate.

Tasks:
1) Produce a short catchy title (6-12 words).
2) Write a TEASER: 3-4 punchy sentences that capture the most impactful insights across different subtopics. No bullets.
3) Write a LONG SUMMARY: 15-20 full sentences, logically structured, cohesive, no repetition, no lists; keep numbers, entities, dates.

Return STRICT JSON only:
{
  "title": "...",
  "teaser": "...",
  "long": "..."
}

TEXT:
"""%s"""`, orDefault(sender, "-"), orDefault(dateISO, "-"), headRunes(content, 9000))

	text, err := s.chat(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}, 1200)
	if err != nil {
		log.Printf("[AI] tiered summary call failed: %v, degrading to short summary", err)
		return s.tieredFromShort(ctx, content, sender)
	}

	res, ok := decodeTiered(text, sender)
	if !ok {
		log.Printf("[AI] tiered summary output was not valid JSON, degrading to short summary")
		return s.tieredFromShort(ctx, content, sender)
	}
	return res, nil
}

// tieredFromShort is the in-adapter safety net: one short summary used for
// both tiers.
func (s *OpenAIService) tieredFromShort(ctx context.Context, content, sender string) (*domain.SummaryResult, error) {
	short, err := s.SummarizeText(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}
	return &domain.SummaryResult{
		Title:  orDefault(sender, "Newsletter"),
		Teaser: short,
		Long:   short,
	}, nil
}

// decodeTiered parses the model's strict-JSON reply field by field. A miss
// anywhere yields ok=false rather than a partial panic-prone decode.
func decodeTiered(text, sender string) (*domain.SummaryResult, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, false
	}

	get := func(key string) string {
		if v, ok := data[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}

	res := &domain.SummaryResult{
		Title:  orDefault(get("title"), orDefault(sender, "Newsletter")),
		Teaser: get("teaser"),
		Long:   get("long"),
	}
	if hl, ok := data["highlights"].([]interface{}); ok {
		for _, h := range hl {
			if hs, ok := h.(string); ok && strings.TrimSpace(hs) != "" {
				res.Highlights = append(res.Highlights, strings.TrimSpace(hs))
			}
			if len(res.Highlights) >= 4 {
				break
			}
		}
	}
	if res.Teaser == "" && res.Long == "" {
		return nil, false
	}
	return res, true
}

const labelSystem = "You extract a compact TOPIC LABEL for a newsletter. " +
	"Return ONLY 1-2 words, Title Case, no punctuation, no emojis. " +
	"Examples: 'Trump', 'OpenAI', 'US Politics', 'Instagram', 'AI Policy'."

var labelJunkRe = regexp.MustCompile(`[^A-Za-z0-9ÇĞİÖŞÜçğıöşü\s\-]`)

// LabelTopic asks the model for a 1-2 word classification tag.
func (s *OpenAIService) LabelTopic(ctx context.Context, subject, body string) (string, error) {
	text := fmt.Sprintf("SUBJECT: %s\n\nBODY:\n%s", subject, headRunes(body, 6000))

	out, err := s.chat(ctx, []chatMessage{
		{Role: "system", Content: labelSystem},
		{Role: "user", Content: text},
	}, 20)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(labelJunkRe.ReplaceAllString(out, ""))
	words := strings.Fields(out)
	if len(words) == 0 {
		return "", fmt.Errorf("empty label returned")
	}
	if len(words) > 2 {
		words = words[:2]
	}
	label := strings.Join(words, " ")
	if r := []rune(label); len(r) > 30 {
		label = string(r[:30])
	}
	return label, nil
}

func headRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
