package commands

import (
	"context"
	"strings"

	"voxbot/internal/domain"
)

// Prefix is the bot's own command sigil. It is intentionally different
// from the "!" sigil other chat bots use, so the rules pipeline can
// filter those without eating our commands.
const Prefix = "~"

type Router struct {
	prefix   string
	cmdIndex map[string]Command
}

func NewRouter(prefix string) *Router {
	if prefix == "" {
		prefix = Prefix
	}
	return &Router{
		prefix:   prefix,
		cmdIndex: make(map[string]Command),
	}
}

func (r *Router) Register(cmd Command) {
	r.cmdIndex[strings.ToLower(cmd.Name())] = cmd
	for _, alias := range cmd.Aliases() {
		r.cmdIndex[strings.ToLower(alias)] = cmd
	}
}

// Matches reports whether the message is addressed to this router.
func (r *Router) Matches(msg domain.ChatMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(msg.Text), r.prefix)
}

func (r *Router) Handle(ctx context.Context, msg domain.ChatMessage, out domain.OutgoingMessagePort) error {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, r.prefix) {
		return nil
	}

	withoutPrefix := strings.TrimPrefix(text, r.prefix)
	parts := strings.Fields(withoutPrefix)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.cmdIndex[cmdName]
	if !ok {
		return nil
	}

	if cmd.ModOnly() && !(msg.IsModerator || msg.IsOwner) {
		return nil
	}

	cmdCtx := &Context{
		Message: msg,
		Out:     out,
		Raw:     withoutPrefix,
		Args:    args,
	}

	return cmd.Handle(ctx, cmdCtx)
}
