package toolcall

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"newsly-backend/internal/newsletter/domain"
)

// Mailbox adapts a tool-call client to the domain Mailbox interface, letting
// the digest pipeline run against a remote mailbox process instead of a
// local API client.
type Mailbox struct {
	client *Client
}

func NewMailbox(client *Client) *Mailbox {
	return &Mailbox{client: client}
}

// ScanCandidates lists recent newsletter-ish messages and collects their
// distinct senders.
func (m *Mailbox) ScanCandidates(ctx context.Context, lookbackDays int) ([]domain.SenderCandidate, error) {
	q := fmt.Sprintf("newer_than:%dd (category:updates OR label:^smartlabel_newsletter)", lookbackDays)
	result, err := m.client.Call(ctx, "gmail.list_messages", map[string]interface{}{
		"q":           q,
		"max_results": 200,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	counts := make(map[string]int)
	messages, _ := result["messages"].([]interface{})
	for _, raw := range messages {
		msg, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := msg["id"].(string)
		if id == "" {
			continue
		}
		full, err := m.client.Call(ctx, "gmail.get_message", map[string]interface{}{"id": id})
		if err != nil {
			return nil, err
		}
		from, _ := full["from"].(string)
		sender := addressOf(from)
		if sender == "" {
			continue
		}
		counts[sender]++
		if _, ok := seen[sender]; !ok {
			seen[sender] = displayNameOf(from, sender)
		}
	}

	candidates := make([]domain.SenderCandidate, 0, len(seen))
	for sender, name := range seen {
		candidates = append(candidates, domain.SenderCandidate{Name: name, Sender: sender, Count: counts[sender]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return strings.ToLower(candidates[i].Name) < strings.ToLower(candidates[j].Name)
	})
	return candidates, nil
}

// FetchLatestFromSender pulls the newest message from the sender within the
// lookback window. No message is not a failure: empty body, epoch date.
func (m *Mailbox) FetchLatestFromSender(ctx context.Context, sender string, lookbackDays int) (*domain.FetchedContent, error) {
	if sender == "" {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	result, err := m.client.Call(ctx, "gmail.list_messages", map[string]interface{}{
		"q":           fmt.Sprintf("from:%s newer_than:%dd", sender, lookbackDays),
		"max_results": 1,
	})
	if err != nil {
		return nil, err
	}

	messages, _ := result["messages"].([]interface{})
	if len(messages) == 0 {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}
	first, _ := messages[0].(map[string]interface{})
	id, _ := first["id"].(string)
	if id == "" {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	full, err := m.client.Call(ctx, "gmail.get_message", map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}

	content, _ := full["content"].(string)
	if content == "" {
		snippet, _ := full["snippet"].(string)
		content = strings.TrimSpace(snippet)
	}

	date := domain.Epoch()
	if dateHeader, _ := full["date"].(string); dateHeader != "" {
		if parsed, err := mail.ParseDate(dateHeader); err == nil {
			date = parsed.UTC()
		}
	}

	return &domain.FetchedContent{Body: content, Date: date}, nil
}

// Send delivers a message through the remote "gmail.send" tool.
func (m *Mailbox) Send(ctx context.Context, to, subject, html, text string) error {
	payload := map[string]interface{}{
		"to":      to,
		"subject": subject,
		"html":    html,
	}
	if text != "" {
		payload["text"] = text
	}

	result, err := m.client.Call(ctx, "gmail.send", payload)
	if err != nil {
		return err
	}
	if status, _ := result["status"].(string); status != "ok" {
		return fmt.Errorf("gmail.send failed: status=%q", status)
	}
	return nil
}

// addressOf extracts the bare address from a From header value.
func addressOf(from string) string {
	if from == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(from); err == nil {
		return strings.ToLower(addr.Address)
	}
	s := strings.TrimSpace(from)
	if i := strings.Index(s, "<"); i >= 0 {
		if j := strings.Index(s[i:], ">"); j > 0 {
			s = s[i+1 : i+j]
		}
	}
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`))
}

// displayNameOf extracts the display name, falling back to the address's
// local part.
func displayNameOf(from, sender string) string {
	if addr, err := mail.ParseAddress(from); err == nil && addr.Name != "" {
		return addr.Name
	}
	s := strings.TrimSpace(from)
	if i := strings.Index(s, "<"); i > 0 {
		if name := strings.Trim(strings.TrimSpace(s[:i]), `"`); name != "" {
			return name
		}
	}
	if at := strings.Index(sender, "@"); at > 0 {
		return sender[:at]
	}
	return sender
}

var _ domain.Mailbox = (*Mailbox)(nil)
