package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser UI is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleChatSocket runs an interactive chat session over a WebSocket.
// Each inbound message is one pipeline turn; the full decision-shaped
// result is written back. Pipeline failures close neither the socket nor
// the session, they are reported as error frames.
func (s *Server) handleChatSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	run := s.pipeline.Run
	if s.config.Pipeline.LegacyRanker {
		run = s.pipeline.RunLegacy
	}

	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Debug("WebSocket closed unexpectedly")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if strings.TrimSpace(req.Message) == "" {
			s.writeSocketError(conn, domain.NewPipelineError(
				domain.ErrInvalidInput, "message must not be empty", ""))
			continue
		}

		result, err := run(c.Request.Context(), req.Message, req.City, req.Zip)
		if err != nil {
			s.log.WithError(err).Error("Chat pipeline failed over WebSocket")
			s.writeSocketError(conn, domain.NewPipelineError(
				domain.ErrPipeline, "chat pipeline failed", ""))
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(result); err != nil {
			s.log.WithError(err).Debug("WebSocket write failed")
			return
		}
	}
}

func (s *Server) writeSocketError(conn *websocket.Conn, perr *domain.PipelineError) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(gin.H{"error": perr}); err != nil {
		s.log.WithError(err).Debug("WebSocket error write failed")
	}
}
