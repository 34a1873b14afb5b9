package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"voxbot/internal/domain"
	"voxbot/internal/usecase/restriction"
)

type CooldownCommand struct {
	restrictions *restriction.Service
	resolver     domain.ViewerResolver
}

func NewCooldownCommand(restrictions *restriction.Service, resolver domain.ViewerResolver) *CooldownCommand {
	return &CooldownCommand{restrictions: restrictions, resolver: resolver}
}

func (c *CooldownCommand) Name() string { return "cooldown" }

func (c *CooldownCommand) Aliases() []string { return nil }

func (c *CooldownCommand) ModOnly() bool { return true }

// Usage: ~cooldown <user> <gapSeconds> [minutes]. Without minutes the
// rule stays until cleared.
func (c *CooldownCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) < 2 {
		return cmdCtx.Reply(ctx, "Usage: ~cooldown <user> <gapSeconds> [minutes]")
	}

	login := cleanLogin(cmdCtx.Args[0])
	viewerID, err := c.resolver.ResolveViewerID(ctx, login)
	if err != nil {
		return cmdCtx.Reply(ctx, fmt.Sprintf("Could not find user %s", login))
	}

	gapSeconds, err := strconv.Atoi(cmdCtx.Args[1])
	if err != nil || gapSeconds < 1 {
		return cmdCtx.Reply(ctx, "Usage: ~cooldown <user> <gapSeconds> [minutes]")
	}

	var duration time.Duration
	if len(cmdCtx.Args) > 2 {
		minutes, err := strconv.Atoi(cmdCtx.Args[2])
		if err != nil || minutes < 1 {
			return cmdCtx.Reply(ctx, "Usage: ~cooldown <user> <gapSeconds> [minutes]")
		}
		duration = time.Duration(minutes) * time.Minute
	}

	gap := time.Duration(gapSeconds) * time.Second
	if err := c.restrictions.SetCooldown(ctx, viewerID, gap, duration); err != nil {
		return err
	}
	return cmdCtx.Reply(ctx, fmt.Sprintf("%s now has a %ds speech cooldown", login, gapSeconds))
}

type UncooldownCommand struct {
	restrictions *restriction.Service
	resolver     domain.ViewerResolver
}

func NewUncooldownCommand(restrictions *restriction.Service, resolver domain.ViewerResolver) *UncooldownCommand {
	return &UncooldownCommand{restrictions: restrictions, resolver: resolver}
}

func (c *UncooldownCommand) Name() string { return "uncooldown" }

func (c *UncooldownCommand) Aliases() []string { return nil }

func (c *UncooldownCommand) ModOnly() bool { return true }

func (c *UncooldownCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Reply(ctx, "Usage: ~uncooldown <user>")
	}

	login := cleanLogin(cmdCtx.Args[0])
	viewerID, err := c.resolver.ResolveViewerID(ctx, login)
	if err != nil {
		return cmdCtx.Reply(ctx, fmt.Sprintf("Could not find user %s", login))
	}

	if err := c.restrictions.ClearCooldown(ctx, viewerID); err != nil {
		return err
	}
	return cmdCtx.Reply(ctx, fmt.Sprintf("Cooldown cleared for %s", login))
}
