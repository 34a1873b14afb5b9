package commands

import (
	"context"
)

// QueueControl is the slice of the playback queue moderators can poke.
type QueueControl interface {
	Skip()
	Clear()
}

type SkipCommand struct {
	queue QueueControl
}

func NewSkipCommand(queue QueueControl) *SkipCommand {
	return &SkipCommand{queue: queue}
}

func (c *SkipCommand) Name() string { return "skip" }

func (c *SkipCommand) Aliases() []string { return nil }

func (c *SkipCommand) ModOnly() bool { return true }

func (c *SkipCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	c.queue.Skip()
	return cmdCtx.Reply(ctx, "Skipped the current message")
}

type ClearCommand struct {
	queue QueueControl
}

func NewClearCommand(queue QueueControl) *ClearCommand {
	return &ClearCommand{queue: queue}
}

func (c *ClearCommand) Name() string { return "clearqueue" }

func (c *ClearCommand) Aliases() []string { return []string{"clear"} }

func (c *ClearCommand) ModOnly() bool { return true }

func (c *ClearCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	c.queue.Clear()
	return cmdCtx.Reply(ctx, "Speech queue cleared")
}
