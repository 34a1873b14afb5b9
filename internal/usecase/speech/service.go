// Package speech is the enqueue path: it decides whether an inbound chat
// message becomes a queue item, and with which voice parameters.
package speech

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"voxbot/internal/app/events"
	"voxbot/internal/domain"
	"voxbot/internal/usecase/rules"
)

// Settings keys owned by the speech service.
const (
	KeyEnabled         = "tts.enabled"          // default "true"
	KeyDefaultProvider = "tts.default_provider" // default "local"
	KeyDefaultVoice    = "tts.default_voice"
	KeySpeed           = "tts.speed"  // default "1"
	KeyPitch           = "tts.pitch"  // default "1"
	KeyVolume          = "tts.volume" // default "1"
)

type Queue interface {
	Enqueue(ctx context.Context, item *domain.QueueItem) error
}

// Restrictions is the slice of the restriction service this path needs.
type Restrictions interface {
	IsMuted(ctx context.Context, viewerID string) (bool, error)
	CooldownRemaining(ctx context.Context, viewerID string) (time.Duration, error)
}

type Service struct {
	settings     domain.SettingsRepository
	restrictions Restrictions
	pipeline     *rules.Pipeline
	queue        Queue
	bus          *events.Bus
}

func NewService(settings domain.SettingsRepository, restrictions Restrictions, pipeline *rules.Pipeline, queue Queue, bus *events.Bus) *Service {
	return &Service{
		settings:     settings,
		restrictions: restrictions,
		pipeline:     pipeline,
		queue:        queue,
		bus:          bus,
	}
}

// HandleChatMessage runs the restriction checks and the rules pipeline,
// then enqueues the surviving text. Rule rejections are not errors; they
// are published on the bus and swallowed.
func (s *Service) HandleChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	if !s.enabled(ctx) {
		return nil
	}

	muted, err := s.restrictions.IsMuted(ctx, msg.ViewerID)
	if err != nil {
		// A broken store should not silence chat; treat as unmuted.
		log.Warn().Err(err).Str("viewer", msg.ViewerID).Msg("speech: mute check failed")
	}
	if muted {
		s.rejected(msg, "viewer is muted")
		return nil
	}

	remaining, err := s.restrictions.CooldownRemaining(ctx, msg.ViewerID)
	if err != nil {
		log.Warn().Err(err).Str("viewer", msg.ViewerID).Msg("speech: cooldown check failed")
	}
	if remaining > 0 {
		s.rejected(msg, fmt.Sprintf("viewer cooldown, %d seconds left", int(math.Ceil(remaining.Seconds()))))
		return nil
	}

	processed := s.pipeline.Process(ctx, msg)
	if !processed.ShouldSpeak {
		s.rejected(msg, processed.Reason)
		return nil
	}

	item, err := s.buildItem(ctx, processed.Text, msg)
	if err != nil {
		return err
	}

	if err := s.queue.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("speech: enqueue: %w", err)
	}
	return nil
}

// buildItem resolves the playback defaults from settings. An unknown
// provider is rejected here, before an item ever exists.
func (s *Service) buildItem(ctx context.Context, text string, msg domain.ChatMessage) (*domain.QueueItem, error) {
	provider, err := domain.ParseProvider(s.stringSetting(ctx, KeyDefaultProvider, string(domain.ProviderLocal)))
	if err != nil {
		return nil, fmt.Errorf("speech: %w", err)
	}

	return &domain.QueueItem{
		ID:       uuid.NewString(),
		Text:     text,
		VoiceID:  s.stringSetting(ctx, KeyDefaultVoice, ""),
		Provider: provider,
		Speed:    s.floatSetting(ctx, KeySpeed, 1),
		Pitch:    s.floatSetting(ctx, KeyPitch, 1),
		Volume:   s.floatSetting(ctx, KeyVolume, 1),
		ViewerID: msg.ViewerID,
		Username: msg.Username,
		Status:   domain.StatusPending,
	}, nil
}

func (s *Service) rejected(msg domain.ChatMessage, reason string) {
	log.Debug().Str("viewer", msg.ViewerID).Str("reason", reason).Msg("speech: message rejected")
	if s.bus != nil {
		s.bus.Publish(events.TopicChatRejected, events.ChatRejectedDTO{
			Platform: string(msg.Platform),
			Username: msg.Username,
			Text:     msg.Text,
			Reason:   reason,
		})
	}
}

func (s *Service) enabled(ctx context.Context) bool {
	raw := s.stringSetting(ctx, KeyEnabled, "true")
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return enabled
}

func (s *Service) stringSetting(ctx context.Context, key, def string) string {
	value, ok, err := s.settings.Get(ctx, key)
	if err != nil || !ok || value == "" {
		return def
	}
	return value
}

func (s *Service) floatSetting(ctx context.Context, key string, def float64) float64 {
	raw := s.stringSetting(ctx, key, "")
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return parsed
}
