package toolcall

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// HandlerFunc executes one named tool. The returned object becomes the
// "result" field of the reply; an error becomes "<tool>.error".
type HandlerFunc func(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)

// Server dispatches tool calls arriving on websocket channels to registered
// handlers. Each channel is served by its own read loop, so replies on one
// channel are naturally serialized.
type Server struct {
	mu       sync.RWMutex
	tools    map[string]HandlerFunc
	upgrader websocket.Upgrader
}

func NewServer() *Server {
	return &Server{
		tools: make(map[string]HandlerFunc),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register adds a tool under its namespaced name, e.g. "gmail.list_messages".
func (s *Server) Register(name string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[name] = fn
}

func (s *Server) lookup(name string) (HandlerFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.tools[name]
	return fn, ok
}

// ServeHTTP upgrades the request and serves tool calls until the channel
// closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ToolCall] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = conn.WriteJSON(map[string]interface{}{"error": "invalid_json"})
			continue
		}

		mtype, _ := msg["type"].(string)
		payload, _ := msg["payload"].(map[string]interface{})
		if payload == nil {
			payload = map[string]interface{}{}
		}

		if mtype == "connect" {
			agent, _ := msg["agent_name"].(string)
			log.Printf("[ToolCall] agent connected: %s", agent)
			_ = conn.WriteJSON(map[string]interface{}{"type": "connected", "agent": agent})
			continue
		}

		fn, ok := s.lookup(mtype)
		if !ok {
			_ = conn.WriteJSON(map[string]interface{}{"error": "unknown_type", "type": mtype})
			continue
		}

		result, err := fn(ctx, payload)
		if err != nil {
			_ = conn.WriteJSON(map[string]interface{}{"type": mtype + ".error", "error": err.Error()})
			continue
		}
		_ = conn.WriteJSON(map[string]interface{}{"type": mtype + ".result", "result": result})
	}
}
