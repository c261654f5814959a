package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tokenboard/market-data/pricestore"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard frontend is served from a different origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

type liveUpdate struct {
	ID     string            `json:"id"`
	Sample pricestore.Sample `json:"sample"`
}

// handleTokenLive upgrades to a WebSocket and pushes the asset's latest
// sample after every poll cycle until the client disconnects
func (s *Server) handleTokenLive(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("API: WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := s.poller.Subscribe()
	defer sub.Cancel()

	// Drain client frames so close and ping/pong are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.pushLatest(conn, id); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case _, ok := <-sub.Chan():
			if !ok {
				return
			}
			if err := s.pushLatest(conn, id); err != nil {
				return
			}
		}
	}
}

func (s *Server) pushLatest(conn *websocket.Conn, id string) error {
	samples := s.store.Series(id)
	if len(samples) == 0 {
		return nil
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(liveUpdate{ID: id, Sample: samples[len(samples)-1]})
}
