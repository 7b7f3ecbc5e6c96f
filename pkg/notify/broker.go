// Package notify tells everyone holding a projection that it went stale. Invalidations are dropped
// from the local cache, streamed to browsers over SSE and relayed to the other service instances
// through a RabbitMQ fanout exchange.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Event is sent to stream subscribers. An empty view means every view of the wedding is stale.
type Event struct {
	WeddingID uint   `json:"weddingId"`
	View      string `json:"view,omitempty"`
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[uint]map[uuid.UUID]chan Event)}
}

// Broker fans events out to the subscribers of a wedding.
type Broker struct {
	mu          sync.Mutex
	subscribers map[uint]map[uuid.UUID]chan Event
}

// Subscribe registers a subscriber of the wedding. The returned channel is closed by Unsubscribe.
func (b *Broker) Subscribe(weddingID uint) (uuid.UUID, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan Event, 8)
	if b.subscribers[weddingID] == nil {
		b.subscribers[weddingID] = make(map[uuid.UUID]chan Event)
	}
	b.subscribers[weddingID][id] = ch
	return id, ch
}

// Unsubscribe removes the subscriber. Calling it more than once is harmless.
func (b *Broker) Unsubscribe(weddingID uint, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[weddingID][id]
	if !ok {
		return
	}
	close(ch)
	delete(b.subscribers[weddingID], id)
	if len(b.subscribers[weddingID]) == 0 {
		delete(b.subscribers, weddingID)
	}
}

// Subscribers returns the number of subscribers of the wedding.
func (b *Broker) Subscribers(weddingID uint) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[weddingID])
}

// Publish sends the event to every subscriber of its wedding and returns how many got it. A
// subscriber whose buffer is full misses the event, it already has an invalidation to act on.
func (b *Broker) Publish(event Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sent int
	for _, ch := range b.subscribers[event.WeddingID] {
		select {
		case ch <- event:
			sent++
		default:
		}
	}
	return sent
}
