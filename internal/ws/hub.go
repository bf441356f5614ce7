package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription ties a connection to one document key.
type Subscription struct {
	Key  string
	Conn Conn
}

// Message is a payload for every subscriber of Key.
type Message struct {
	Key     string
	Payload []byte
}

// Hub fans document changes out to websocket subscribers, one topic per key.
// All writes to a connection happen on the Run goroutine.
type Hub struct {
	Topics     map[string]map[Conn]bool
	Register   chan Subscription
	Unregister chan Subscription
	Broadcast  chan Message

	// Loader returns the current payload for a key. It runs on the hub
	// goroutine when a connection registers, so the first message a subscriber
	// sees can never be older than a broadcast it already received.
	Loader func(key string) ([]byte, error)

	quit  chan struct{}
	mutex sync.Mutex
}

func NewHub(loader func(key string) ([]byte, error)) *Hub {
	return &Hub{
		Topics:     make(map[string]map[Conn]bool),
		Register:   make(chan Subscription),
		Unregister: make(chan Subscription),
		Broadcast:  make(chan Message, 64),
		Loader:     loader,
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.Register:
			h.mutex.Lock()
			if h.Topics[sub.Key] == nil {
				h.Topics[sub.Key] = make(map[Conn]bool)
			}
			h.Topics[sub.Key][sub.Conn] = true
			h.mutex.Unlock()
			log.Debug().Str("key", sub.Key).Msg("ws subscriber connected")

			if h.Loader != nil {
				payload, err := h.Loader(sub.Key)
				if err != nil {
					log.Error().Err(err).Str("key", sub.Key).Msg("load initial snapshot")
					continue
				}
				h.send(sub.Key, sub.Conn, payload)
			}

		case sub := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Topics[sub.Key][sub.Conn]; ok {
				delete(h.Topics[sub.Key], sub.Conn)
				sub.Conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			conns := make([]Conn, 0, len(h.Topics[msg.Key]))
			for conn := range h.Topics[msg.Key] {
				conns = append(conns, conn)
			}
			h.mutex.Unlock()
			for _, conn := range conns {
				h.send(msg.Key, conn, msg.Payload)
			}

		case <-h.quit:
			return
		}
	}
}

// send writes one message and drops the connection if the write fails.
func (h *Hub) send(key string, conn Conn, payload []byte) {
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.mutex.Lock()
		delete(h.Topics[key], conn)
		h.mutex.Unlock()
		conn.Close()
	}
}

// Subscribers returns how many connections follow key.
func (h *Hub) Subscribers(key string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Topics[key])
}

// Stop ends Run.
func (h *Hub) Stop() {
	close(h.quit)
}
