// Package textclean normalizes raw newsletter bodies into plain text.
// It strips markup, unsubscribe/footer boilerplate, garbage header lines and
// raw URLs. Clean is idempotent: running it over its own output is a no-op.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Boilerplate fragments whose surrounding block is removed wholesale from
// HTML bodies. Matching is case-insensitive substring.
var unsubPatterns = []string{
	"unsubscribe",
	"view email in browser",
	"view in browser",
	"privacy policy",
	"manage preferences",
	"update preferences",
	"contact us",
	"sponsored",
	"in partnership with",
	"advertiser content",
	"ad:",
	"sponsor:",
	"read in browser",
	"read on the web",
	"open in browser",
}

// Lines that are dates, weekday headers or subscribe/browser CTAs carry no
// content and are dropped outright.
var headerGarbageRe = regexp.MustCompile(`(?i)(` +
	`^\s*(subscribe|read\s+in\s+browser|view\s+in\s+browser)\b` + `|` +
	`^\s*editor'?s\s+note\b` + `|` +
	`^\s*(aug|sep|oct|nov|dec|jan|feb|mar|apr|may|jun|jul)\w*\s+\d{1,2},\s+\d{4}` + `|` +
	`^\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b` +
	`)`)

var (
	urlRe        = regexp.MustCompile(`(?i)https?://\S+`)
	hspaceRe     = regexp.MustCompile(`[ \t]+`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes a newsletter body (HTML or plain text) into canonical
// plain text.
func Clean(htmlOrText string) string {
	if htmlOrText == "" {
		return ""
	}

	text := htmlOrText
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		if extracted, ok := extractText(text); ok {
			text = extracted
		}
	}

	// Drop empty and garbage-header lines
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		if headerGarbageRe.MatchString(ln) {
			continue
		}
		lines = append(lines, ln)
	}
	text = strings.Join(lines, "\n")

	// Strip raw links and tracking URLs
	text = urlRe.ReplaceAllString(text, "")

	// Collapse excess whitespace
	text = hspaceRe.ReplaceAllString(text, " ")
	text = multiBlankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// extractText parses markup, removes non-content elements and boilerplate
// blocks, and returns the remaining text with one line per text node.
func extractText(raw string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", false
	}

	stripNonContent(doc)
	stripUnsubBlocks(doc)

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, "\n"), true
}

// stripNonContent removes script/style/noscript subtrees.
func stripNonContent(n *html.Node) {
	var doomed []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				doomed = append(doomed, n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	for _, d := range doomed {
		if d.Parent != nil {
			d.Parent.RemoveChild(d)
		}
	}
}

// stripUnsubBlocks removes the nearest non-root ancestor of every text node
// that matches a boilerplate pattern, taking typical footer/CTA blocks out
// with their markup rather than leaving orphaned link text behind.
func stripUnsubBlocks(n *html.Node) {
	var doomed []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			s := strings.ToLower(strings.TrimSpace(n.Data))
			if s == "" {
				return
			}
			for _, p := range unsubPatterns {
				if strings.Contains(s, p) {
					if parent := removableAncestor(n); parent != nil {
						doomed = append(doomed, parent)
					}
					return
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	for _, d := range doomed {
		if d.Parent != nil {
			d.Parent.RemoveChild(d)
		}
	}
}

// removableAncestor returns the element the text node should be removed with:
// its parent element, unless that parent is the document root, html or body.
func removableAncestor(n *html.Node) *html.Node {
	p := n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	if p.Data == "html" || p.Data == "body" {
		return nil
	}
	return p
}
