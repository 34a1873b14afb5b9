// Package notifications centralizes the logging of bus events so the
// interesting lifecycle moments (rejections, spoken items, errors) land
// in one place.
package notifications

import (
	"context"

	"github.com/rs/zerolog/log"

	"voxbot/internal/app/events"
)

type EventLogger struct {
	bus *events.Bus
}

func NewEventLogger(bus *events.Bus) *EventLogger {
	return &EventLogger{bus: bus}
}

// Run consumes events until ctx is cancelled.
func (l *EventLogger) Run(ctx context.Context) {
	rejected, unsubRejected := l.bus.Subscribe(events.TopicChatRejected)
	defer unsubRejected()
	completed, unsubCompleted := l.bus.Subscribe(events.TopicItemCompleted)
	defer unsubCompleted()
	appErrors, unsubErrors := l.bus.Subscribe(events.TopicAppError)
	defer unsubErrors()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-rejected:
			if !ok {
				return
			}
			if dto, ok := payload.(events.ChatRejectedDTO); ok {
				log.Info().Str("platform", dto.Platform).Str("username", dto.Username).
					Str("reason", dto.Reason).Msg("message rejected")
			}
		case payload, ok := <-completed:
			if !ok {
				return
			}
			if dto, ok := payload.(events.QueueItemDTO); ok {
				logger := log.Info()
				if dto.Error != "" {
					logger = log.Error().Str("error", dto.Error)
				}
				logger.Str("item", dto.ID).Str("provider", dto.Provider).
					Str("status", dto.Status).Msg("queue item finished")
			}
		case payload, ok := <-appErrors:
			if !ok {
				return
			}
			log.Error().Interface("payload", payload).Msg("application error event")
		}
	}
}
