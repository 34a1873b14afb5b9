package commands

import (
	"context"
	"fmt"
	"strings"

	"voxbot/internal/domain"
	"voxbot/internal/usecase/speech"
)

// TTSCommand toggles speech on and off: ~tts on | ~tts off.
type TTSCommand struct {
	settings domain.SettingsRepository
}

func NewTTSCommand(settings domain.SettingsRepository) *TTSCommand {
	return &TTSCommand{settings: settings}
}

func (c *TTSCommand) Name() string { return "tts" }

func (c *TTSCommand) Aliases() []string { return nil }

func (c *TTSCommand) ModOnly() bool { return true }

func (c *TTSCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Reply(ctx, "Usage: ~tts on|off")
	}

	switch strings.ToLower(cmdCtx.Args[0]) {
	case "on":
		if err := c.settings.Set(ctx, speech.KeyEnabled, "true"); err != nil {
			return err
		}
		return cmdCtx.Reply(ctx, "TTS enabled")
	case "off":
		if err := c.settings.Set(ctx, speech.KeyEnabled, "false"); err != nil {
			return err
		}
		return cmdCtx.Reply(ctx, "TTS disabled")
	default:
		return cmdCtx.Reply(ctx, "Usage: ~tts on|off")
	}
}

// VoiceCommand changes the default voice id: ~voice <id>.
type VoiceCommand struct {
	settings domain.SettingsRepository
}

func NewVoiceCommand(settings domain.SettingsRepository) *VoiceCommand {
	return &VoiceCommand{settings: settings}
}

func (c *VoiceCommand) Name() string { return "voice" }

func (c *VoiceCommand) Aliases() []string { return nil }

func (c *VoiceCommand) ModOnly() bool { return true }

func (c *VoiceCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Reply(ctx, "Usage: ~voice <id>")
	}

	voice := strings.TrimSpace(cmdCtx.Args[0])
	if err := c.settings.Set(ctx, speech.KeyDefaultVoice, voice); err != nil {
		return err
	}
	return cmdCtx.Reply(ctx, fmt.Sprintf("Default voice set to %s", voice))
}

// ProviderCommand switches the synthesis backend: ~provider <tag>.
type ProviderCommand struct {
	settings domain.SettingsRepository
}

func NewProviderCommand(settings domain.SettingsRepository) *ProviderCommand {
	return &ProviderCommand{settings: settings}
}

func (c *ProviderCommand) Name() string { return "provider" }

func (c *ProviderCommand) Aliases() []string { return nil }

func (c *ProviderCommand) ModOnly() bool { return true }

func (c *ProviderCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Reply(ctx, "Usage: ~provider local|google|azure|elevenlabs")
	}

	provider, err := domain.ParseProvider(cmdCtx.Args[0])
	if err != nil {
		return cmdCtx.Reply(ctx, "Usage: ~provider local|google|azure|elevenlabs")
	}

	if err := c.settings.Set(ctx, speech.KeyDefaultProvider, string(provider)); err != nil {
		return err
	}
	return cmdCtx.Reply(ctx, fmt.Sprintf("Speech provider set to %s", provider))
}
