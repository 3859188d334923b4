// Package imap provides a Mailbox backed by a plain IMAP/SMTP account, for
// accounts without Gmail API access.
package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"newsly-backend/internal/newsletter/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
)

type Service struct {
	imapAddr string
	smtpAddr string
	username string
	password string
}

func NewService(imapAddr, smtpAddr, username, password string) *Service {
	return &Service{
		imapAddr: imapAddr,
		smtpAddr: smtpAddr,
		username: username,
		password: password,
	}
}

// dial connects, logs in and selects INBOX read-only.
func (s *Service) dial() (*client.Client, error) {
	host, _, err := net.SplitHostPort(s.imapAddr)
	if err != nil {
		host = s.imapAddr
	}

	c, err := client.DialTLS(s.imapAddr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	if err := c.Login(s.username, s.password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if _, err := c.Select("INBOX", true); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}
	return c, nil
}

// ScanCandidates lists distinct senders seen in the inbox within the
// lookback window. IMAP has no newsletter label, so the window alone defines
// the candidate pool.
func (s *Service) ScanCandidates(ctx context.Context, lookbackDays int) ([]domain.SenderCandidate, error) {
	c, err := s.dial()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -lookbackDays)

	uids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > 200 {
		uids = uids[len(uids)-200:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, len(uids))
	if err := c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages); err != nil {
		return nil, fmt.Errorf("failed to fetch envelopes: %w", err)
	}

	seen := make(map[string]string)
	counts := make(map[string]int)
	for msg := range messages {
		if msg.Envelope == nil || len(msg.Envelope.From) == 0 {
			continue
		}
		from := msg.Envelope.From[0]
		addr := strings.ToLower(fmt.Sprintf("%s@%s", from.MailboxName, from.HostName))
		if addr == "@" {
			continue
		}
		counts[addr]++
		if _, ok := seen[addr]; !ok {
			name := decodeHeader(from.PersonalName)
			if name == "" {
				name = from.MailboxName
			}
			seen[addr] = name
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

// FetchLatestFromSender pulls the newest message from the sender. No match
// yields empty content with the epoch date, not an error.
func (s *Service) FetchLatestFromSender(ctx context.Context, sender string, lookbackDays int) (*domain.FetchedContent, error) {
	if sender == "" {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	c, err := s.dial()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", sender)
	criteria.Since = time.Now().AddDate(0, 0, -lookbackDays)

	uids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(uids) == 0 {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	// Highest sequence number is the most recent message
	latest := uids[len(uids)-1]
	seqset := new(imap.SeqSet)
	seqset.AddNum(latest)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	if err := c.Fetch(seqset, items, messages); err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}

	msg := <-messages
	if msg == nil {
		return &domain.FetchedContent{Date: domain.Epoch()}, nil
	}

	date := domain.Epoch()
	if msg.Envelope != nil && !msg.Envelope.Date.IsZero() {
		date = msg.Envelope.Date.UTC()
	}

	body := msg.GetBody(section)
	if body == nil {
		return &domain.FetchedContent{Date: date}, nil
	}

	entity, err := message.Read(body)
	if err != nil {
		return &domain.FetchedContent{Date: date}, nil
	}

	text, html := extractBodies(entity)
	content := text
	if content == "" {
		content = html
	}
	return &domain.FetchedContent{Body: content, Date: date}, nil
}

// Send delivers a multipart/alternative message over SMTP with implicit TLS.
func (s *Service) Send(ctx context.Context, to, subject, html, text string) error {
	host, _, err := net.SplitHostPort(s.smtpAddr)
	if err != nil {
		host = s.smtpAddr
	}

	conn, err := tls.Dial("tcp", s.smtpAddr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("smtp tls dial: %w", err)
	}
	defer conn.Close()

	cl, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer cl.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, host)
	if err := cl.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := cl.Mail(s.username); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := cl.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := cl.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(s.username, to, subject, html, text)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html, text string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", sanitizeHeader(from)))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", sanitizeHeader(to)))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", sanitizeHeader(subject))))
	sb.WriteString("MIME-Version: 1.0\r\n")

	if html != "" {
		boundary := "newsly_alt_boundary"
		sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))
		sb.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n", boundary))
		if text != "" {
			sb.WriteString(text)
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("\r\n--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n", boundary))
		sb.WriteString(html)
		sb.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
	} else {
		sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		sb.WriteString(text)
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

// sanitizeHeader strips CR/LF to prevent header injection.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}

// extractBodies walks a MIME entity and returns the text/plain and text/html
// parts, recursing through nested multiparts.
func extractBodies(entity *message.Entity) (text, html string) {
	mediaType, _, _ := entity.Header.ContentType()

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := entity.MultipartReader()
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}
			t, h := extractBodies(part)
			if text == "" {
				text = t
			}
			if html == "" {
				html = h
			}
		}
		return text, html
	}

	body, _ := io.ReadAll(entity.Body)
	switch mediaType {
	case "text/html":
		return "", string(body)
	case "text/plain", "":
		return string(body), ""
	default:
		return "", ""
	}
}

var mimeWordDecoder = &mime.WordDecoder{}

func decodeHeader(s string) string {
	decoded, err := mimeWordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

var _ domain.Mailbox = (*Service)(nil)
