package usecase

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// English + Turkish keywords: products, campaigns, policy, research etc.
// Sentences hitting these score higher in the fallback extractor.
var summaryKeywords = []string{
	// EN
	"sale", "discount", "deal", "offer", "launch", "update", "policy",
	"research", "report", "funding", "merger", "acquisition", "feature",
	"security", "privacy", "climate", "economy", "market", "earnings",
	// TR
	"kampanya", "indirim", "fırsat", "duyuru", "güncelleme", "tasarı",
	"yasa", "karar", "araştırma", "rapor", "yatırım", "fonlama",
	"birleşme", "satın alma", "özellik", "güvenlik", "mahremiyet",
	"iklim", "ekonomi", "piyasa", "kazanç",
}

// Sentences containing these never make it into a summary, whatever their
// score.
var sentenceBoilerplate = []string{
	"unsubscribe", "view email in browser", "view in browser",
	"manage preferences", "update preferences", "privacy policy",
	"contact us", "in partnership with", "sponsored",
	"advertiser content", "read in browser", "read on the web",
	"open in browser",
}

// splitSentences breaks text into sentence candidates. A boundary is a
// '.', '!' or '?' followed by whitespace where the next visible character
// starts a new sentence (an uppercase letter, including accented uppercase,
// or a digit).
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) {
			continue
		}
		if next := runes[j]; unicode.IsUpper(next) || unicode.IsDigit(next) {
			out = append(out, string(runes[start:i+1]))
			start = j
			i = j - 1
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

// scoreSentence rates a candidate: keyword hits dominate, with a small bonus
// for length up to 120 characters.
func scoreSentence(sent string) float64 {
	low := strings.ToLower(sent)
	hits := 0
	for _, k := range summaryKeywords {
		if strings.Contains(low, k) {
			hits++
		}
	}
	lengthBonus := float64(utf8.RuneCountInString(sent)) / 120
	if lengthBonus > 1.0 {
		lengthBonus = 1.0
	}
	return float64(hits)*2.0 + lengthBonus
}

// pickSentences selects up to maxCount meaningful sentences from cleaned
// text, best-scored first. Boilerplate sentences are excluded entirely and
// near-duplicates (same first 80 characters) are kept once.
func pickSentences(txt string, maxCount, minLen int) []string {
	var cleaned []string
	for _, p := range splitSentences(txt) {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < minLen {
			continue
		}
		low := strings.ToLower(p)
		drop := false
		for _, u := range sentenceBoilerplate {
			if strings.Contains(low, u) {
				drop = true
				break
			}
		}
		if !drop {
			cleaned = append(cleaned, p)
		}
	}

	// Stable: original order breaks score ties
	sort.SliceStable(cleaned, func(i, j int) bool {
		return scoreSentence(cleaned[i]) > scoreSentence(cleaned[j])
	})

	var out []string
	seen := make(map[string]bool)
	for _, c := range cleaned {
		key := c
		if r := []rune(c); len(r) > 80 {
			key = string(r[:80])
		}
		if seen[key] {
			continue
		}
		out = append(out, c)
		seen[key] = true
		if len(out) >= maxCount {
			break
		}
	}
	return out
}

// buildFallbacks produces the degraded summary tier from cleaned text with no
// external call: highlights (3-4 sentences), a teaser joining them, and a
// longer 15-20 sentence summary.
func buildFallbacks(cleanContent string) (teaser, longSummary string, highlights []string) {
	highlights = pickSentences(cleanContent, 4, 50)
	longSents := pickSentences(cleanContent, 20, 40)

	if len(highlights) > 0 {
		teaser = strings.Join(highlights, " ")
	} else {
		teaser = truncateRunes(cleanContent, 300)
	}

	if len(longSents) > 0 {
		longSummary = strings.Join(longSents, " ")
	} else {
		longSummary = teaser
	}

	// When the extractor degenerates, make the long tier visibly richer than
	// the teaser for long sources.
	if strings.TrimSpace(longSummary) == strings.TrimSpace(teaser) &&
		utf8.RuneCountInString(cleanContent) > 1500 {
		longSummary = truncateRunes(cleanContent, 1500)
	}

	return strings.TrimSpace(teaser), strings.TrimSpace(longSummary), highlights
}

// truncateRunes cuts s at max runes, appending an ellipsis when it was
// actually truncated.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// deriveHighlights rebuilds empty highlights from whichever of teaser and
// long summary has sentences, capped at four.
func deriveHighlights(teaser, longSummary string, max int) []string {
	parts := trimmedSentences(teaser)
	if len(parts) == 0 {
		parts = trimmedSentences(longSummary)
	}
	if len(parts) > max {
		parts = parts[:max]
	}
	return parts
}

func trimmedSentences(s string) []string {
	var out []string
	for _, p := range splitSentences(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
