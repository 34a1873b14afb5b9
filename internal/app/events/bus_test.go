package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicQueueStatus)
	defer unsubscribe()

	bus.Publish(TopicQueueStatus, "payload")

	select {
	case payload := <-ch:
		assert.Equal(t, "payload", payload)
	case <-time.After(time.Second):
		t.Fatal("payload never arrived")
	}
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicQueueStatus)
	defer unsubscribe()

	bus.Publish(TopicChatMessage, "other topic")

	select {
	case payload := <-ch:
		t.Fatalf("received payload from the wrong topic: %v", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicQueueStatus)

	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after the only subscriber left must not panic.
	bus.Publish(TopicQueueStatus, "nobody home")
}

func TestBus_PublishDuringUnsubscribe(t *testing.T) {
	bus := NewBus()

	// A publisher hammering the topic while subscribers come and go
	// must never hit a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			bus.Publish(TopicQueueStatus, i)
		}
	}()

	for i := 0; i < 200; i++ {
		_, unsubscribe := bus.Subscribe(TopicQueueStatus)
		unsubscribe()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher never finished")
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicQueueStatus)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultBufferSize+10; i++ {
			bus.Publish(TopicQueueStatus, i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The buffer is full but intact.
	first := <-ch
	require.Equal(t, 0, first)
}
