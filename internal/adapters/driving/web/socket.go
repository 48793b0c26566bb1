package web

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/custodia-labs/arrivals/internal/logger"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleSocket pushes every snapshot change to the client, starting with
// the current one.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	logger.Debug("web: socket %s connected from %s", id, r.RemoteAddr)
	defer logger.Debug("web: socket %s closed", id)

	updates, unsubscribe := s.ports.Snapshot.Subscribe()
	defer unsubscribe()

	// The read loop only exists to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeSnapshot(conn, toSnapshotView(s.ports.Snapshot.Snapshot())); err != nil {
		return
	}

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				closeSocket(conn)
				return
			}
			if err := writeSnapshot(conn, toSnapshotView(snap)); err != nil {
				log.Printf("web: socket %s write failed: %v", id, err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, view snapshotView) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return conn.WriteJSON(view)
}

func closeSocket(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)) //nolint:errcheck
}
