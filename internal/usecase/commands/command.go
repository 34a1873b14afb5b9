package commands

import (
	"context"

	"voxbot/internal/domain"
)

type Command interface {
	Name() string
	Aliases() []string
	// ModOnly commands are ignored for viewers without moderator or
	// broadcaster badges.
	ModOnly() bool
	Handle(ctx context.Context, c *Context) error
}

type Context struct {
	Message domain.ChatMessage
	Out     domain.OutgoingMessagePort

	Raw  string
	Args []string
}

func (c *Context) Reply(ctx context.Context, text string) error {
	return c.Out.SendMessage(ctx, c.Message.Platform, c.Message.ChannelID, text)
}
