// The toolserver binary exposes one Gmail account as named tools over the
// tool-call websocket protocol, so the digest pipeline can run in a separate
// process from mailbox credentials.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"newsly-backend/pkg/config"
	"newsly-backend/pkg/gmail"
	"newsly-backend/pkg/toolcall"
)

func main() {
	cfg := config.Load()

	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenFile)

	server := toolcall.NewServer()

	server.Register("gmail.list_messages", func(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
		query, _ := payload["q"].(string)
		maxResults := int64(10)
		if v, ok := payload["max_results"].(float64); ok && v > 0 {
			maxResults = int64(v)
		}

		ids, err := gmailService.ListMessageIDs(ctx, query, maxResults)
		if err != nil {
			return nil, err
		}

		messages := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			messages = append(messages, map[string]interface{}{"id": id})
		}
		return map[string]interface{}{"messages": messages}, nil
	})

	server.Register("gmail.get_message", func(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
		id, _ := payload["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("id is required")
		}

		detail, err := gmailService.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"id":      detail.ID,
			"subject": detail.Subject,
			"from":    detail.From,
			"date":    detail.Date,
			"snippet": detail.Snippet,
			"content": detail.Content,
		}, nil
	})

	server.Register("gmail.send", func(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
		to, _ := payload["to"].(string)
		subject, _ := payload["subject"].(string)
		html, _ := payload["html"].(string)
		text, _ := payload["text"].(string)
		if text == "" {
			// Older callers pass "body" instead of "text"
			text, _ = payload["body"].(string)
		}
		if to == "" {
			return nil, fmt.Errorf("to is required")
		}

		if err := gmailService.Send(ctx, to, subject, html, text); err != nil {
			return nil, err
		}
		return map[string]interface{}{"status": "ok", "id": ""}, nil
	})

	addr := ":" + cfg.ToolCallPort
	log.Printf("[ToolServer] listening on %s", addr)
	if err := http.ListenAndServe(addr, server); err != nil {
		log.Fatal("Tool server failed: ", err)
	}
}
