// Package telemetry broadcasts simulation snapshots over websockets and
// accepts driving commands from connected clients.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"train-simulator/internal/sim"
)

// ProtocolVersion is carried in every message as "ver".
const ProtocolVersion = 1

const (
	TypeSnapshot = "snapshot"
	TypeCommand  = "command"
)

// DefaultWriteTimeout bounds each write to a subscriber.
const DefaultWriteTimeout = time.Second

// DefaultSendQueue is how many snapshots may wait for a slow subscriber.
const DefaultSendQueue = 4

// SnapshotMessage is sent to subscribers on every publish.
type SnapshotMessage struct {
	Ver      int          `json:"ver"`
	Type     string       `json:"type"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

// CommandMessage is sent by clients to drive the train.
type CommandMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Command string `json:"command"`
}

type subscriber struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// queue hands data to the writer. A full queue loses its oldest entry, so a
// lagging subscriber skips ahead to the newest snapshots.
func (s *subscriber) queue(data []byte) {
	for {
		select {
		case s.send <- data:
			return
		default:
		}
		select {
		case <-s.send:
		default:
		}
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// HubConfig tunes a Hub. Zero values take defaults.
type HubConfig struct {
	Logger       *log.Logger
	WriteTimeout time.Duration
	CommandQueue int
	SendQueue    int
}

// Hub fans snapshots out to every subscriber and queues their commands.
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	last     []byte
	commands chan sim.Command
	logger   *log.Logger
	timeout  time.Duration
	sendCap  int
}

func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	queue := cfg.CommandQueue
	if queue <= 0 {
		queue = 16
	}
	sendCap := cfg.SendQueue
	if sendCap <= 0 {
		sendCap = DefaultSendQueue
	}
	return &Hub{
		subs:     make(map[*subscriber]struct{}),
		commands: make(chan sim.Command, queue),
		logger:   logger,
		timeout:  timeout,
		sendCap:  sendCap,
	}
}

// Commands delivers commands received from clients. The simulation loop
// drains it; when it falls behind, new commands are dropped.
func (h *Hub) Commands() <-chan sim.Command { return h.commands }

// Subscribers reports how many clients are connected.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish marshals sn once and queues it for every subscriber. It does not
// wait on the network: each subscriber has its own writer, and one whose
// write fails or times out is dropped.
func (h *Hub) Publish(sn sim.Snapshot) error {
	data, err := json.Marshal(SnapshotMessage{Ver: ProtocolVersion, Type: TypeSnapshot, Snapshot: sn})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	h.mu.Lock()
	h.last = data
	for s := range h.subs {
		s.queue(data)
	}
	h.mu.Unlock()
	return nil
}

// subscribe registers conn, starts its writer and queues the latest
// snapshot, if any.
func (h *Hub) subscribe(conn *websocket.Conn) *subscriber {
	s := &subscriber{
		conn:    conn,
		timeout: h.timeout,
		send:    make(chan []byte, h.sendCap),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	if h.last != nil {
		s.queue(h.last)
	}
	h.mu.Unlock()

	go h.writeLoop(s)
	return s
}

func (h *Hub) writeLoop(s *subscriber) {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			if err := s.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Printf("dropping subscriber %s: %v", s.conn.RemoteAddr(), err)
				h.unsubscribe(s)
				return
			}
		}
	}
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		s.WriteMessage(websocket.CloseMessage, msg)
		s.close()
	}
}

func (h *Hub) enqueue(cmd sim.Command) bool {
	select {
	case h.commands <- cmd:
		return true
	default:
		return false
	}
}

// handleMessage decodes one client payload and queues its command.
func (h *Hub) handleMessage(payload []byte) error {
	var msg CommandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}
	if msg.Type != TypeCommand {
		return fmt.Errorf("unexpected message type %q", msg.Type)
	}
	cmd, err := sim.ParseCommand(msg.Command)
	if err != nil {
		return err
	}
	if !h.enqueue(cmd) {
		return fmt.Errorf("command queue full, dropped %s", cmd)
	}
	return nil
}
