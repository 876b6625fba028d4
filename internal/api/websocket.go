package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/VADemon/archive/internal/eventbus"

	"github.com/gorilla/websocket"
)

// Hub fans swarm events out to the connected live-feed clients. A client
// that cannot keep up is dropped rather than allowed to stall the loop.
type Hub struct {
	clients    map[*feedClient]bool
	broadcast  chan []byte
	register   chan *feedClient
	unregister chan *feedClient
	mutex      sync.Mutex
}

type feedClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		clients:    make(map[*feedClient]bool),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) handleLiveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[api] live feed upgrade error:", err)
		return
	}

	client := &feedClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	s.hub.register <- client

	go func() {
		defer func() {
			s.hub.unregister <- client
			conn.Close()
		}()
		for {
			message, ok := <-client.send
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			w.Close()
		}
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// BroadcastMessage is the wire shape of a live-feed frame. Payloads carry
// batch ids and counts; worker ids are bearer credentials and never appear.
type BroadcastMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// subscribeFeed attaches the hub to the tracker's event bus.
func (s *Server) subscribeFeed(bus *eventbus.Bus) {
	events := make(chan eventbus.Event, 64)
	for _, eventType := range []string{
		eventbus.TypeWorkerEnrolled,
		eventbus.TypeBatchDispatched,
		eventbus.TypeBatchVerified,
		eventbus.TypeBatchOverwritten,
		eventbus.TypeBatchFinalized,
		eventbus.TypeSubmissionStaged,
	} {
		bus.Subscribe(eventType, events)
	}
	go s.forwardEvents(events)
}

func (s *Server) forwardEvents(events <-chan eventbus.Event) {
	for ev := range events {
		msg := BroadcastMessage{
			Type:      ev.Type,
			Timestamp: ev.Timestamp,
			Payload:   ev.Data,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		s.hub.broadcast <- data
	}
}
