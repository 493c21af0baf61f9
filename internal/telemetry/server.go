package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades requests to websocket subscriptions on a Hub.
type Handler struct {
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub:    hub,
		logger: hub.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	sub := h.hub.subscribe(conn)
	defer h.hub.unsubscribe(sub)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.hub.handleMessage(payload); err != nil {
			h.logger.Printf("discarding message from %s: %v", r.RemoteAddr, err)
		}
	}
}

// NewMux routes /ws to the hub and /schema to the message schema.
func NewMux(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", NewHandler(hub))
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.MarshalIndent(Schema(), "", "  ")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/schema+json")
		w.Write(append(data, '\n'))
	})
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down and
// disconnects the hub's subscribers. ready, if non-nil, receives the bound
// address once listening.
func Serve(ctx context.Context, addr string, hub *Hub, ready chan<- net.Addr) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", addr, err)
	}
	if ready != nil {
		ready <- ln.Addr()
	}

	srv := &http.Server{
		Handler:           NewMux(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		hub.Close()
	}()

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
