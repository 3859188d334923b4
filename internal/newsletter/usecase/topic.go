package usecase

import (
	"regexp"
	"strings"
)

// topicRule maps sender-name keywords to a coarse topic category. Rules are
// checked in order; the first hit wins.
type topicRule struct {
	Keywords []string
	Category string
}

var topicRules = []topicRule{
	{Keywords: []string{"ai", "ml", "tech", "brew"}, Category: "Technology"},
	{Keywords: []string{"biz", "market", "finance", "bloomberg", "wall"}, Category: "Business"},
	{Keywords: []string{"design", "ux", "ui"}, Category: "Design"},
}

const defaultTopic = "General"

// topicFor categorizes a sender by name + address.
func topicFor(nameAndSender string) string {
	n := strings.ToLower(nameAndSender)
	for _, rule := range topicRules {
		for _, k := range rule.Keywords {
			if strings.Contains(n, k) {
				return rule.Category
			}
		}
	}
	return defaultTopic
}

var properNounRe = regexp.MustCompile(`\b([A-ZÇĞİÖŞÜ][A-Za-zÇĞİÖŞÜçğıöşü0-9\-]{2,})\b`)

// fallbackLabel guesses a short classification tag without the labeling
// service: the first capitalized words of the subject, else of the body head.
func fallbackLabel(subject, body string) string {
	text := strings.TrimSpace(subject)
	if text == "" {
		text = truncateRunes(body, 200)
	}
	cands := properNounRe.FindAllString(text, 2)
	if len(cands) == 0 {
		return defaultTopic
	}
	label := strings.Join(cands, " ")
	if r := []rune(label); len(r) > 30 {
		label = string(r[:30])
	}
	return titleCase(label)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
