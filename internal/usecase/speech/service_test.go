package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxbot/internal/app/events"
	"voxbot/internal/domain"
	"voxbot/internal/usecase/rules"
)

type mapSettings map[string]string

func (m mapSettings) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := m[key]
	return value, ok, nil
}

func (m mapSettings) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

type fakeRestrictions struct {
	muted     bool
	mutedErr  error
	remaining time.Duration
}

func (f *fakeRestrictions) IsMuted(_ context.Context, _ string) (bool, error) {
	return f.muted, f.mutedErr
}

func (f *fakeRestrictions) CooldownRemaining(_ context.Context, _ string) (time.Duration, error) {
	return f.remaining, nil
}

type fakeQueue struct {
	items []*domain.QueueItem
	err   error
}

func (f *fakeQueue) Enqueue(_ context.Context, item *domain.QueueItem) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

type harness struct {
	settings     mapSettings
	restrictions *fakeRestrictions
	queue        *fakeQueue
	rejections   <-chan any
	service      *Service
}

func newHarness(t *testing.T, settings mapSettings) *harness {
	t.Helper()
	if settings == nil {
		settings = mapSettings{}
	}

	bus := events.NewBus()
	rejections, unsubscribe := bus.Subscribe(events.TopicChatRejected)
	t.Cleanup(unsubscribe)

	h := &harness{
		settings:     settings,
		restrictions: &fakeRestrictions{},
		queue:        &fakeQueue{},
		rejections:   rejections,
	}
	h.service = NewService(settings, h.restrictions, rules.NewPipeline(settings), h.queue, bus)
	return h
}

func (h *harness) lastRejection(t *testing.T) events.ChatRejectedDTO {
	t.Helper()
	select {
	case payload := <-h.rejections:
		dto, ok := payload.(events.ChatRejectedDTO)
		require.True(t, ok, "unexpected payload type %T", payload)
		return dto
	case <-time.After(time.Second):
		t.Fatal("no rejection published")
		return events.ChatRejectedDTO{}
	}
}

func msg(text string) domain.ChatMessage {
	return domain.ChatMessage{
		Platform: domain.PlatformTwitch,
		ViewerID: "100",
		Username: "alice",
		Text:     text,
	}
}

func TestHandleChatMessage_EnqueuesAcceptedMessage(t *testing.T) {
	h := newHarness(t, nil)

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	require.NoError(t, err)
	require.Len(t, h.queue.items, 1)
	item := h.queue.items[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "hello there", item.Text)
	assert.Equal(t, domain.ProviderLocal, item.Provider)
	assert.Equal(t, 1.0, item.Speed)
	assert.Equal(t, 1.0, item.Volume)
	assert.Equal(t, "100", item.ViewerID)
	assert.Equal(t, "alice", item.Username)
}

func TestHandleChatMessage_ReadsVoiceDefaultsFromSettings(t *testing.T) {
	h := newHarness(t, mapSettings{
		KeyDefaultProvider: "google",
		KeyDefaultVoice:    "en",
		KeySpeed:           "1.25",
		KeyVolume:          "0.8",
	})

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	require.NoError(t, err)
	require.Len(t, h.queue.items, 1)
	item := h.queue.items[0]
	assert.Equal(t, domain.ProviderGoogle, item.Provider)
	assert.Equal(t, "en", item.VoiceID)
	assert.Equal(t, 1.25, item.Speed)
	assert.Equal(t, 0.8, item.Volume)
}

func TestHandleChatMessage_DisabledDoesNothing(t *testing.T) {
	h := newHarness(t, mapSettings{KeyEnabled: "false"})

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	require.NoError(t, err)
	assert.Empty(t, h.queue.items)
}

func TestHandleChatMessage_MutedViewerRejected(t *testing.T) {
	h := newHarness(t, nil)
	h.restrictions.muted = true

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	require.NoError(t, err, "a rejection is not an error")
	assert.Empty(t, h.queue.items)
	rejection := h.lastRejection(t)
	assert.Equal(t, "viewer is muted", rejection.Reason)
	assert.Equal(t, "alice", rejection.Username)
}

func TestHandleChatMessage_MuteCheckFailureFailsOpen(t *testing.T) {
	h := newHarness(t, nil)
	h.restrictions.mutedErr = errors.New("db closed")

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	require.NoError(t, err)
	assert.Len(t, h.queue.items, 1, "a broken store must not silence chat")
}

func TestHandleChatMessage_ViewerCooldownRejected(t *testing.T) {
	h := newHarness(t, nil)
	h.restrictions.remaining = 42500 * time.Millisecond

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	require.NoError(t, err)
	assert.Empty(t, h.queue.items)
	rejection := h.lastRejection(t)
	assert.Contains(t, rejection.Reason, "43 seconds")
}

func TestHandleChatMessage_PipelineRejectionPublished(t *testing.T) {
	h := newHarness(t, nil)

	err := h.service.HandleChatMessage(context.Background(), msg("!clip"))

	require.NoError(t, err)
	assert.Empty(t, h.queue.items)
	rejection := h.lastRejection(t)
	assert.Equal(t, "commands are not spoken", rejection.Reason)
}

func TestHandleChatMessage_UnknownProviderIsAnError(t *testing.T) {
	h := newHarness(t, mapSettings{KeyDefaultProvider: "shoutcaster9000"})

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	assert.Error(t, err)
	assert.Empty(t, h.queue.items)
}

func TestHandleChatMessage_EnqueueErrorSurfaces(t *testing.T) {
	h := newHarness(t, nil)
	h.queue.err = errors.New("queue stopped")

	err := h.service.HandleChatMessage(context.Background(), msg("hello there"))

	assert.Error(t, err)
}
