// Package websocket delivers live poll events to subscribed connections. A
// single connection may subscribe to any number of poll channels; events for
// one poll reach each subscriber in the order they were produced.
package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"quickpoll-backend/models"
)

type subscription struct {
	client *Client
	pollID string
}

type broadcastMessage struct {
	pollID string
	data   []byte
}

// Hub maintains the per-poll channel membership and fans events out to
// subscribers. A single run loop serializes subscription changes and
// broadcasts, which is what preserves per-channel FIFO order.
type Hub struct {
	// Subscribers grouped by poll id.
	channels map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan broadcastMessage

	// Protects reads of channels from outside the run loop.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		channels:    make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan broadcastMessage, 256),
	}
}

// Run processes registrations, subscriptions and broadcasts until the
// process exits. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// Nothing to track until the client joins a channel.
			_ = client

		case client := <-h.unregister:
			h.mu.Lock()
			for pollID := range client.polls {
				h.removeFromChannel(pollID, client)
			}
			h.mu.Unlock()
			close(client.send)

		case sub := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.channels[sub.pollID]; !ok {
				h.channels[sub.pollID] = make(map[*Client]bool)
			}
			h.channels[sub.pollID][sub.client] = true
			sub.client.polls[sub.pollID] = true
			h.mu.Unlock()

		case sub := <-h.unsubscribe:
			h.mu.Lock()
			h.removeFromChannel(sub.pollID, sub.client)
			delete(sub.client.polls, sub.pollID)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.channels[message.pollID] {
				select {
				case client.send <- message.data:
				default:
					// Slow consumer: drop it rather than stall the
					// channel for everyone else.
					h.removeFromChannel(message.pollID, client)
					delete(client.polls, message.pollID)
					log.Printf("dropped slow websocket subscriber [poll %s]", message.pollID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeFromChannel must be called with h.mu held.
func (h *Hub) removeFromChannel(pollID string, client *Client) {
	if subscribers, ok := h.channels[pollID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, pollID)
		}
	}
}

// RegisterClient attaches a new connection to the hub.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient detaches a connection and closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// SubscriberCount reports how many connections are on a poll's channel.
func (h *Hub) SubscriberCount(pollID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[pollID])
}

// publish serializes an event and enqueues it for the given poll's channel.
// Never blocks the caller: when the broadcast queue is full the event is
// dropped, which is acceptable under fire-and-forget delivery.
func (h *Hub) publish(pollID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event [poll %s]: %v", event.Type, pollID, err)
		return
	}

	select {
	case h.broadcast <- broadcastMessage{pollID: pollID, data: data}:
	default:
		log.Printf("broadcast queue full, dropping %s event [poll %s]", event.Type, pollID)
	}
}

// The methods below implement the poll service's Notifier.

func (h *Hub) PollUpdated(pollID string, poll *models.Poll) {
	h.publish(pollID, Event{Type: EventPollUpdated, Data: PollUpdatedPayload{PollID: pollID, Poll: poll}})
}

func (h *Hub) PollDeleted(pollID string) {
	h.publish(pollID, Event{Type: EventPollDeleted, Data: PollDeletedPayload{PollID: pollID}})
}

func (h *Hub) VoteAdded(pollID string, vote *models.Vote, updatedCounts map[string]int64) {
	h.publish(pollID, Event{Type: EventVoteAdded, Data: VotePayload{PollID: pollID, Vote: vote, UpdatedCounts: updatedCounts}})
}

func (h *Hub) VoteChanged(pollID string, vote *models.Vote, updatedCounts map[string]int64) {
	h.publish(pollID, Event{Type: EventVoteChanged, Data: VotePayload{PollID: pollID, Vote: vote, UpdatedCounts: updatedCounts}})
}

func (h *Hub) VoteRemoved(pollID, sessionID string, updatedCounts map[string]int64) {
	h.publish(pollID, Event{Type: EventVoteRemoved, Data: VoteRemovedPayload{PollID: pollID, SessionID: sessionID, UpdatedCounts: updatedCounts}})
}

func (h *Hub) LikeAdded(pollID string, like *models.Like, totalLikes int64) {
	h.publish(pollID, Event{Type: EventLikeAdded, Data: LikeAddedPayload{PollID: pollID, Like: like, TotalLikes: totalLikes}})
}

func (h *Hub) LikeRemoved(pollID, sessionID string, totalLikes int64) {
	h.publish(pollID, Event{Type: EventLikeRemoved, Data: LikeRemovedPayload{PollID: pollID, SessionID: sessionID, TotalLikes: totalLikes}})
}
