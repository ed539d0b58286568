package server

import (
	"net/http"

	"github.com/atikulmunna/logsift/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades to WebSocket and streams reports to the client,
// starting with the latest one when a run already completed.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	reports := s.hub.Subscribe()
	defer s.hub.Unsubscribe(reports)

	// Read pump: detect client disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if rep, ok := s.hub.Latest(); ok {
		if !s.send(conn, rep) {
			return
		}
	}

	// Write pump: send reports as JSON.
	for {
		select {
		case <-gone:
			return
		case rep, ok := <-reports:
			if !ok {
				return
			}
			if !s.send(conn, rep) {
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, rep report.Report) bool {
	if err := conn.WriteJSON(rep); err != nil {
		s.log.Debug("websocket write failed", "err", err)
		return false
	}
	return true
}
