package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"newsly-backend/internal/newsletter/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service accesses one Gmail account through the Gmail API. The OAuth token
// lives in a JSON file and is transparently refreshed and re-persisted.
type Service struct {
	clientID     string
	clientSecret string
	tokenFile    string
}

func NewService(clientID, clientSecret, tokenFile string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenFile:    tokenFile,
	}
}

// MessageDetail is the flattened view of one message used by the tool server
// and the content fetcher.
type MessageDetail struct {
	ID      string
	Subject string
	From    string
	Date    string
	Snippet string
	Content string
}

// notifyTokenSource persists refreshed tokens back to the token file so the
// next process start does not need a new consent flow.
type notifyTokenSource struct {
	src     oauth2.TokenSource
	current *oauth2.Token
	file    string
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.current == nil || s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := saveToken(s.file, t); err != nil {
			log.Printf("[Gmail] failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func loadToken(file string) (*oauth2.Token, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("unable to parse token file: %w", err)
	}
	return &token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o600)
}

// api builds an authorized Gmail API client.
func (s *Service) api(ctx context.Context) (*gmail.Service, error) {
	token, err := loadToken(s.tokenFile)
	if err != nil {
		return nil, err
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailModifyScope, gmail.GmailSendScope},
	}

	wrapped := &notifyTokenSource{
		src:     config.TokenSource(ctx, token),
		current: token,
		file:    s.tokenFile,
	}

	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, wrapped))
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// ListMessageIDs returns up to maxResults message ids matching the query.
func (s *Service) ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	srv, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 500 {
		maxResults = 500 // Gmail API maximum
	}

	resp, err := srv.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMessage fetches one message in full and flattens headers and body.
func (s *Service) GetMessage(ctx context.Context, id string) (*MessageDetail, error) {
	srv, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %w", err)
	}

	detail := &MessageDetail{
		ID:      id,
		Subject: getHeader(msg.Payload, "Subject"),
		From:    getHeader(msg.Payload, "From"),
		Date:    getHeader(msg.Payload, "Date"),
		Snippet: msg.Snippet,
		Content: extractBestBody(msg.Payload),
	}
	return detail, nil
}

// ScanCandidates inventories distinct senders of newsletter-ish messages
// within the lookback window.
func (s *Service) ScanCandidates(ctx context.Context, lookbackDays int) ([]domain.SenderCandidate, error) {
	srv, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("newer_than:%dd (category:updates OR label:^smartlabel_newsletter)", lookbackDays)
	resp, err := srv.Users.Messages.List("me").Q(query).MaxResults(200).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	// Fetch From headers in parallel with a small concurrency cap
	type fromResult struct {
		from string
	}
	results := make(chan fromResult, len(resp.Messages))
	semaphore := make(chan struct{}, 10)

	for _, m := range resp.Messages {
		go func(msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			msg, err := srv.Users.Messages.Get("me", msgID).
				Format("metadata").MetadataHeaders("From").Context(ctx).Do()
			if err != nil {
				results <- fromResult{}
				return
			}
			results <- fromResult{from: getHeader(msg.Payload, "From")}
		}(m.Id)
	}

	seen := make(map[string]string)
	counts := make(map[string]int)
	for range resp.Messages {
		r := <-results
		sender := parseEmailAddress(r.from)
		if sender == "" {
			continue
		}
		counts[sender]++
		if _, ok := seen[sender]; !ok {
			seen[sender] = guessDisplayName(r.from, sender)
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

// FetchLatestFromSender retrieves the most recent message from one sender.
// Absence is data: no message yields empty content and the epoch date.
func (s *Service) FetchLatestFromSender(ctx context.Context, sender string, lookbackDays int) (*domain.FetchedContent, error) {
	if sender == "" {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	ids, err := s.ListMessageIDs(ctx, fmt.Sprintf("from:%s newer_than:%dd", sender, lookbackDays), 1)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	detail, err := s.GetMessage(ctx, ids[0])
	if err != nil {
		return nil, err
	}

	content := detail.Content
	if content == "" {
		// Last resort: the preview snippet
		content = strings.TrimSpace(detail.Snippet)
	}

	date := domain.Epoch()
	if detail.Date != "" {
		if parsed, err := mail.ParseDate(detail.Date); err == nil {
			date = parsed.UTC()
		}
	}

	return &domain.FetchedContent{Body: content, Date: date}, nil
}

// Send delivers an HTML message with an optional plain-text alternative.
func (s *Service) Send(ctx context.Context, to, subject, html, text string) error {
	srv, err := s.api(ctx)
	if err != nil {
		return err
	}

	var emailMsg bytes.Buffer
	emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	emailMsg.WriteString("MIME-Version: 1.0\r\n")

	if html != "" {
		boundary := "newsly_alt_boundary"
		emailMsg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

		emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		if text != "" {
			emailMsg.WriteString(text)
		} else {
			emailMsg.WriteString(" ")
		}
		emailMsg.WriteString("\r\n")

		emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		emailMsg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		emailMsg.WriteString(html)
		emailMsg.WriteString("\r\n")

		emailMsg.WriteString(fmt.Sprintf("--%s--", boundary))
	} else {
		emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		emailMsg.WriteString(text)
	}

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(emailMsg.Bytes()),
	}
	if _, err := srv.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}
	return nil
}

// Helper functions

func getHeader(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, header := range payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

func flattenParts(parts []*gmail.MessagePart) []*gmail.MessagePart {
	var out []*gmail.MessagePart
	for _, p := range parts {
		if len(p.Parts) > 0 {
			out = append(out, flattenParts(p.Parts)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// extractBestBody prefers text/plain, then text/html, then the payload's own
// body data. The caller decides whether to fall back to the snippet.
func extractBestBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	flat := flattenParts(payload.Parts)
	for _, mime := range []string{"text/plain", "text/html"} {
		for _, p := range flat {
			if p.MimeType == mime && p.Body != nil && p.Body.Data != "" {
				if decoded := decodeB64URL(p.Body.Data); decoded != "" {
					return decoded
				}
			}
		}
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return decodeB64URL(payload.Body.Data)
	}
	return ""
}

// decodeB64URL decodes base64url data, tolerating missing padding.
func decodeB64URL(data string) string {
	if data == "" {
		return ""
	}
	if pad := len(data) % 4; pad != 0 {
		data += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func parseEmailAddress(fromHeader string) string {
	if fromHeader == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(fromHeader); err == nil {
		return strings.ToLower(addr.Address)
	}
	s := strings.TrimSpace(fromHeader)
	if i := strings.Index(s, "<"); i >= 0 {
		if j := strings.Index(s[i:], ">"); j > 0 {
			s = s[i+1 : i+j]
		}
	}
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`))
}

func guessDisplayName(fromHeader, sender string) string {
	if addr, err := mail.ParseAddress(fromHeader); err == nil && addr.Name != "" {
		return addr.Name
	}
	s := strings.TrimSpace(fromHeader)
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

var _ domain.Mailbox = (*Service)(nil)
