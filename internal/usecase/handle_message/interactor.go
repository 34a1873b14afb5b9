// Package handle_message
package handle_message

import (
	"context"

	"voxbot/internal/app/events"
	"voxbot/internal/domain"
	"voxbot/internal/usecase/commands"
	"voxbot/internal/usecase/speech"
)

// Interactor fans an inbound chat message out: command-sigil messages go
// to the router, everything else down the speech path.
type Interactor struct {
	router *commands.Router
	speech *speech.Service
	out    domain.OutgoingMessagePort
	bus    *events.Bus
}

func NewInteractor(out domain.OutgoingMessagePort, router *commands.Router, speechSvc *speech.Service, bus *events.Bus) *Interactor {
	return &Interactor{
		router: router,
		speech: speechSvc,
		out:    out,
		bus:    bus,
	}
}

func (uc *Interactor) Handle(ctx context.Context, msg domain.ChatMessage) error {
	if uc.bus != nil {
		uc.bus.Publish(events.TopicChatMessage, msg)
	}

	if uc.router != nil && uc.router.Matches(msg) {
		return uc.router.Handle(ctx, msg, uc.out)
	}

	return uc.speech.HandleChatMessage(ctx, msg)
}
