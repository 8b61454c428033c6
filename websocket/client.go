package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// PollValidator checks that a poll exists before a client may join its
// channel. It returns a non-nil error for unknown polls.
type PollValidator func(ctx context.Context, pollID string) error

// Client is a single websocket connection attached to the hub.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	validate  PollValidator

	// Buffered channel of outbound messages.
	send chan []byte

	// Channels this client has joined. Mutated only by the hub run loop.
	polls map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, validate PollValidator) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		validate:  validate,
		send:      make(chan []byte, 256),
		polls:     make(map[string]bool),
	}
}

// Start registers the client and launches its read and write pumps.
func (c *Client) Start() {
	c.hub.RegisterClient(c)
	go c.writePump()
	go c.readPump()
}

// readPump reads subscription messages from the connection and forwards
// them to the hub. It runs in a per-connection goroutine and is the only
// reader on the connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendEvent(Event{Type: EventError, Data: ErrorPayload{Message: "Invalid message format"}})
			continue
		}

		switch msg.Type {
		case MessageJoinPoll:
			c.handleJoin(msg.PollID)
		case MessageLeavePoll:
			if msg.PollID != "" {
				c.hub.unsubscribe <- subscription{client: c, pollID: msg.PollID}
				c.sendEvent(Event{Type: EventLeftPoll, Data: JoinedPollPayload{PollID: msg.PollID}})
			}
		default:
			c.sendEvent(Event{Type: EventError, Data: ErrorPayload{Message: "Unknown message type: " + msg.Type}})
		}
	}
}

func (c *Client) handleJoin(pollID string) {
	if pollID == "" {
		c.sendEvent(Event{Type: EventError, Data: ErrorPayload{Message: "pollId is required"}})
		return
	}

	if c.validate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.validate(ctx, pollID)
		cancel()
		if err != nil {
			c.sendEvent(Event{Type: EventError, Data: ErrorPayload{Message: "Poll not found"}})
			return
		}
	}

	c.hub.subscribe <- subscription{client: c, pollID: pollID}
	c.sendEvent(Event{Type: EventJoinedPoll, Data: JoinedPollPayload{PollID: pollID}})
}

// sendEvent queues an event for this client only.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Queue full, the write pump will notice the stall via ping timeout.
	}
}

// writePump pushes queued messages to the connection and keeps it alive
// with pings. It is the only writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain anything already queued to reduce syscalls.
			for i := 0; i < len(c.send); i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
