package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	TopicChatMessage   = "chat:message"
	TopicChatRejected  = "chat:rejected"
	TopicQueueStatus   = "queue:status"
	TopicItemStarted   = "queue:item_started"
	TopicItemCompleted = "queue:item_completed"
	TopicAppError      = "app:error"

	defaultBufferSize = 128
)

// Bus is a small in-process topic bus. Publish never blocks: a slow
// subscriber drops payloads instead of stalling the publisher.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]map[int]chan any
	nextSubID int
	closed    bool

	dropMu     sync.Mutex
	dropCounts map[string]uint64
}

func NewBus() *Bus {
	return &Bus{
		subs:       make(map[string]map[int]chan any),
		dropCounts: make(map[string]uint64),
	}
}

func (b *Bus) Publish(topic string, payload any) {
	if topic == "" {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	// Sends stay under the subscriber lock: unsubscribe closes the
	// channel while holding the write lock, so a send can never race a
	// close. The sends never block, so holding the lock here is cheap.
	for _, ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
			b.recordDrop(topic)
		}
	}
}

func (b *Bus) Subscribe(topic string) (<-chan any, func()) {
	ch := make(chan any, defaultBufferSize)

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[string]map[int]chan any)
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan any)
	}
	id := b.nextSubID
	b.nextSubID++
	b.subs[topic][id] = ch
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.subs[topic]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subs, topic)
			}
		}
		close(ch)
	}

	return ch, unsubscribe
}

func (b *Bus) recordDrop(topic string) {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	if b.dropCounts == nil {
		b.dropCounts = make(map[string]uint64)
	}
	b.dropCounts[topic]++
	if b.dropCounts[topic]%100 == 1 {
		log.Warn().Str("topic", topic).Uint64("drops", b.dropCounts[topic]).
			Msg("events: dropping payloads for slow subscriber")
	}
}
