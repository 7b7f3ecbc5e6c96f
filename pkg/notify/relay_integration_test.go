package notify_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nuptial-ops/wedding-manager/pkg/inttest"
	"github.com/nuptial-ops/wedding-manager/pkg/notify"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *received) handle(_ context.Context, event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *received) get() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

func TestRelay(t *testing.T) {
	amqpClient := inttest.SetupRabbitMQ(t)
	logger := slog.New(slog.DiscardHandler)
	exchange := "roster.invalidations"

	newRelay := func(t *testing.T) *notify.Relay {
		conn, err := amqp.Dial(amqpClient.URI)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		relay, err := notify.NewRelay(logger, conn, exchange)
		require.NoError(t, err)
		return relay
	}
	first := newRelay(t)
	second := newRelay(t)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var firstReceived, secondReceived received
	consume := func(relay *notify.Relay, r *received) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = relay.Consume(ctx, r.handle)
		}()
	}
	consume(first, &firstReceived)
	consume(second, &secondReceived)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	t.Run("OtherInstancesReceive", func(t *testing.T) {
		// the queues are bound asynchronously, keep publishing until the first message arrives
		require.Eventually(t, func() bool {
			if err := first.Publish(ctx, notify.Event{WeddingID: 1, View: "guests"}); err != nil {
				return false
			}
			return len(secondReceived.get()) > 0
		}, 30*time.Second, 200*time.Millisecond)

		assert.Equal(t, notify.Event{WeddingID: 1, View: "guests"}, secondReceived.get()[0])
		assert.Empty(t, firstReceived.get(), "a relay must skip its own messages")
	})

	t.Run("InvalidMessageIsDropped", func(t *testing.T) {
		before := len(firstReceived.get())
		err := amqpClient.Channel.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
			ContentType: "application/json",
			Body:        []byte(`{"origin":"elsewhere"}`),
		})
		require.NoError(t, err)
		require.NoError(t, second.Publish(ctx, notify.Event{WeddingID: 2}))

		require.Eventually(t, func() bool { return len(firstReceived.get()) > before }, 10*time.Second, 50*time.Millisecond)
		assert.Equal(t, notify.Event{WeddingID: 2}, firstReceived.get()[before])
	})

	t.Run("HubOnOtherInstance", func(t *testing.T) {
		cache := roster.NewCache(0)
		broker := notify.NewBroker()
		hub := notify.NewHub(logger, cache, broker, second)
		key := roster.CacheKey{WeddingID: 3, View: "vendors"}
		cache.Put(key, roster.Schema{}, nil)
		_, events := broker.Subscribe(3)

		require.NoError(t, first.Publish(ctx, notify.Event{WeddingID: 3, View: "vendors"}))
		require.Eventually(t, func() bool {
			for _, event := range secondReceived.get() {
				if event.WeddingID == 3 {
					hub.Receive(ctx, event)
					return true
				}
			}
			return false
		}, 10*time.Second, 50*time.Millisecond)

		_, ok := cache.Get(key)
		assert.False(t, ok)
		assert.Equal(t, notify.Event{WeddingID: 3, View: "vendors"}, <-events)
	})
}
