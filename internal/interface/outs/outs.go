package outs

import (
	"context"
	"fmt"
	"sync"

	"voxbot/internal/domain"
)

// Sender is implemented by the outbound side of each platform adapter.
type Sender interface {
	SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error
}

// MultiSender routes a reply to the adapter of the platform the original
// message came from.
type MultiSender struct {
	mu      sync.RWMutex
	senders map[domain.Platform]Sender
}

func NewMultiSender() *MultiSender {
	return &MultiSender{
		senders: make(map[domain.Platform]Sender),
	}
}

func (m *MultiSender) Register(platform domain.Platform, sender Sender) {
	if m == nil || sender == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.senders[platform] = sender
}

func (m *MultiSender) Unregister(platform domain.Platform) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.senders, platform)
}

func (m *MultiSender) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if m == nil {
		return fmt.Errorf("no multi sender configured")
	}
	m.mu.RLock()
	sender, ok := m.senders[platform]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no sender registered for platform %s", platform)
	}

	return sender.SendMessage(ctx, platform, channelID, text)
}
