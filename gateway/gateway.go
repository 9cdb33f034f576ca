// Package gateway exposes the turn pipeline over a WebSocket chat endpoint.
// Each connection gets its own memory session, so conversations never share
// topic or recall state.
package gateway

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cartlane/copilot-go-sdk/core"
	"github.com/cartlane/copilot-go-sdk/memory"
	"github.com/cartlane/copilot-go-sdk/pipeline"
)

// ChatRequest is one inbound chat message. Image bytes travel base64-encoded
// in JSON.
type ChatRequest struct {
	Message string `json:"message"`
	Image   []byte `json:"image,omitempty"`
}

// ChatResponse is the reply to one ChatRequest.
type ChatResponse struct {
	Reply         string              `json:"reply"`
	Products      []core.RankedResult `json:"products"`
	ComposedQuery string              `json:"composed_query"`
	SessionID     string              `json:"session_id"`
}

// Server upgrades HTTP requests to WebSocket chat connections.
type Server struct {
	pipeline   *pipeline.Pipeline
	newSession func() *memory.Session
	upgrader   websocket.Upgrader
}

// New creates a gateway. newSession is invoked once per connection to build
// that conversation's memory context.
func New(p *pipeline.Pipeline, newSession func() *memory.Session) *Server {
	return &Server{
		pipeline:   p,
		newSession: newSession,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 20,
			WriteBufferSize: 1 << 16,
			// Browser clients are served cross-origin in local setups.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles one chat connection: read a request, run the turn,
// write the response, until the peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GATEWAY] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := s.newSession()
	defer sess.Close()
	log.Printf("[GATEWAY] Session %s connected", sess.ID())

	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[GATEWAY] Session %s read error: %v", sess.ID(), err)
			}
			return
		}

		result, err := s.pipeline.HandleTurn(r.Context(), sess, pipeline.Turn{
			Message: req.Message,
			Image:   req.Image,
		})
		if err != nil {
			log.Printf("[GATEWAY] Session %s turn failed: %v", sess.ID(), err)
			return
		}

		resp := ChatResponse{
			Reply:         result.Reply,
			Products:      result.Products,
			ComposedQuery: result.ComposedQuery,
			SessionID:     sess.ID(),
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[GATEWAY] Session %s write error: %v", sess.ID(), err)
			return
		}
	}
}
