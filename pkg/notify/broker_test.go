package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker()

	broker.Subscribe(1)
	broker.Subscribe(1)
	broker.Subscribe(2)

	assert.Equal(t, 2, broker.Subscribers(1))
	assert.Equal(t, 1, broker.Subscribers(2))
	assert.Equal(t, 0, broker.Subscribers(3))
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker()
	id, events := broker.Subscribe(1)

	broker.Unsubscribe(1, id)
	broker.Unsubscribe(1, id)

	assert.Equal(t, 0, broker.Subscribers(1))
	_, open := <-events
	assert.False(t, open)
}

func TestBroker_Publish(t *testing.T) {
	broker := NewBroker()
	_, first := broker.Subscribe(1)
	_, second := broker.Subscribe(1)
	_, other := broker.Subscribe(2)

	sent := broker.Publish(Event{WeddingID: 1, View: "guests"})

	assert.Equal(t, 2, sent)
	assert.Equal(t, Event{WeddingID: 1, View: "guests"}, <-first)
	assert.Equal(t, Event{WeddingID: 1, View: "guests"}, <-second)
	assert.Empty(t, other)
}

func TestBroker_Publish_NoSubscriber(t *testing.T) {
	broker := NewBroker()

	sent := broker.Publish(Event{WeddingID: 1})

	assert.Equal(t, 0, sent)
}

func TestBroker_Publish_FullBuffer(t *testing.T) {
	broker := NewBroker()
	_, events := broker.Subscribe(1)

	for range cap(events) {
		require.Equal(t, 1, broker.Publish(Event{WeddingID: 1}))
	}

	assert.Equal(t, 0, broker.Publish(Event{WeddingID: 1}))
	assert.Len(t, events, cap(events))
}
