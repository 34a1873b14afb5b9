package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"voxbot/internal/domain"
	"voxbot/internal/usecase/restriction"
)

type MuteCommand struct {
	restrictions *restriction.Service
	resolver     domain.ViewerResolver
}

func NewMuteCommand(restrictions *restriction.Service, resolver domain.ViewerResolver) *MuteCommand {
	return &MuteCommand{restrictions: restrictions, resolver: resolver}
}

func (c *MuteCommand) Name() string { return "mute" }

func (c *MuteCommand) Aliases() []string { return nil }

func (c *MuteCommand) ModOnly() bool { return true }

// Usage: ~mute <user> [minutes]. Without minutes the mute is permanent.
func (c *MuteCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Reply(ctx, "Usage: ~mute <user> [minutes]")
	}

	login := cleanLogin(cmdCtx.Args[0])
	viewerID, err := c.resolver.ResolveViewerID(ctx, login)
	if err != nil {
		return cmdCtx.Reply(ctx, fmt.Sprintf("Could not find user %s", login))
	}

	var period time.Duration
	if len(cmdCtx.Args) > 1 {
		minutes, err := strconv.Atoi(cmdCtx.Args[1])
		if err != nil || minutes < 1 {
			return cmdCtx.Reply(ctx, "Usage: ~mute <user> [minutes]")
		}
		period = time.Duration(minutes) * time.Minute
	}

	if err := c.restrictions.Mute(ctx, viewerID, period); err != nil {
		return err
	}

	if period > 0 {
		return cmdCtx.Reply(ctx, fmt.Sprintf("%s muted for %d minutes", login, int(period.Minutes())))
	}
	return cmdCtx.Reply(ctx, fmt.Sprintf("%s muted", login))
}

type UnmuteCommand struct {
	restrictions *restriction.Service
	resolver     domain.ViewerResolver
}

func NewUnmuteCommand(restrictions *restriction.Service, resolver domain.ViewerResolver) *UnmuteCommand {
	return &UnmuteCommand{restrictions: restrictions, resolver: resolver}
}

func (c *UnmuteCommand) Name() string { return "unmute" }

func (c *UnmuteCommand) Aliases() []string { return nil }

func (c *UnmuteCommand) ModOnly() bool { return true }

func (c *UnmuteCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Reply(ctx, "Usage: ~unmute <user>")
	}

	login := cleanLogin(cmdCtx.Args[0])
	viewerID, err := c.resolver.ResolveViewerID(ctx, login)
	if err != nil {
		return cmdCtx.Reply(ctx, fmt.Sprintf("Could not find user %s", login))
	}

	if err := c.restrictions.Unmute(ctx, viewerID); err != nil {
		return err
	}
	return cmdCtx.Reply(ctx, fmt.Sprintf("%s unmuted", login))
}

func cleanLogin(raw string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
}
