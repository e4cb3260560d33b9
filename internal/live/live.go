// Package live streams a search run's progress to connected browser tabs
// over a websocket: a Hub owning the client registry and broadcast
// channel, a Client per connection with buffered send/read pumps, and a
// handler that upgrades the request.
package live

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// ProgressEvent is the JSON envelope broadcast to connected viewers as
// Calc.Expand's Progress callback fires.
type ProgressEvent struct {
	Hop         int    `json:"hop"`
	RoutesDone  int    `json:"routes_done"`
	RoutesTotal int    `json:"routes_total"`
	Phase       string `json:"phase"` // "expanding" | "done" | "error"
	Message     string `json:"message,omitempty"`
}

// Client is a single connected viewer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of connected viewers and broadcasts progress
// events to all of them.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a Hub. Call Run in a goroutine before serving any
// connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the Hub's event loop; it blocks and must run in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.Broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Publish broadcasts a ProgressEvent to every connected viewer. Safe to
// call even when Hub is nil (absence of the live collaborator must be
// silent, the same contract as the logger and routecache).
func (h *Hub) Publish(ev ProgressEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- data:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades an HTTP request to a websocket connection and registers
// the resulting Client with the Hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: upgrade: %v", err)
		return
	}
	c := &Client{hub: hub, conn: conn, send: make(chan []byte, 32)}
	hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(msg)
		if err := w.Close(); err != nil {
			return
		}
	}
}
