package rules

import (
	"context"
	"strconv"
	"strings"
	"time"

	"voxbot/internal/domain"
)

// Settings keys recognized by the rules pipeline. Every value is stored
// as a string: booleans as "true"/"false", numbers as decimal strings,
// lists comma-joined.
const (
	KeyFilterCommands     = "rules.filter_commands"
	KeyFilterURLs         = "rules.filter_urls"
	KeyFilterBots         = "rules.filter_bots"
	KeyBotList            = "rules.bot_list"
	KeyAnnounceUsername   = "rules.announce_username"
	KeyAnnounceStyle      = "rules.announce_style"
	KeyMinLength          = "rules.min_length"
	KeyMaxLength          = "rules.max_length"
	KeySkipDuplicates     = "rules.skip_duplicates"
	KeyDuplicateWindow    = "rules.duplicate_window_seconds"
	KeyUserCooldown       = "rules.user_cooldown_seconds"
	KeyGlobalCooldown     = "rules.global_cooldown_seconds"
	KeyLimitEmotes        = "rules.limit_emotes"
	KeyMaxEmotes          = "rules.max_emotes"
	KeyLimitEmojis        = "rules.limit_emojis"
	KeyMaxEmojis          = "rules.max_emojis"
	KeyLimitRepeatedChars = "rules.limit_repeated_chars"
	KeyMaxRepeatedChars   = "rules.max_repeated_chars"
	KeyLimitLongNumbers   = "rules.limit_long_numbers"
	KeyMaxNumberDigits    = "rules.max_number_digits"
	KeyBlockedWords       = "rules.blocked_words"
	KeyBlockedReplacement = "rules.blocked_word_replacement"
)

const (
	AnnounceStyleSays  = "says"
	AnnounceStyleFrom  = "from"
	AnnounceStyleColon = "colon"
)

// Config is a read-only snapshot of the rules options, loaded fresh for
// each processed message.
type Config struct {
	FilterCommands bool
	FilterURLs     bool
	FilterBots     bool
	BotNames       map[string]struct{}

	AnnounceUsername bool
	AnnounceStyle    string

	MinLength int
	MaxLength int

	SkipDuplicates  bool
	DuplicateWindow time.Duration

	UserCooldown   time.Duration
	GlobalCooldown time.Duration

	LimitEmotes bool
	MaxEmotes   int

	LimitEmojis bool
	MaxEmojis   int

	LimitRepeatedChars bool
	MaxRepeatedChars   int

	LimitLongNumbers bool
	MaxNumberDigits  int

	BlockedWords       []string
	BlockedReplacement string
}

func DefaultConfig() Config {
	return Config{
		FilterCommands:     true,
		FilterURLs:         true,
		FilterBots:         true,
		BotNames:           botSet("nightbot,streamelements,moobot,streamlabs"),
		AnnounceUsername:   false,
		AnnounceStyle:      AnnounceStyleSays,
		MinLength:          0,
		MaxLength:          300,
		SkipDuplicates:     false,
		DuplicateWindow:    30 * time.Second,
		UserCooldown:       0,
		GlobalCooldown:     0,
		LimitEmotes:        false,
		MaxEmotes:          3,
		LimitEmojis:        false,
		MaxEmojis:          3,
		LimitRepeatedChars: false,
		MaxRepeatedChars:   3,
		LimitLongNumbers:   false,
		MaxNumberDigits:    6,
		BlockedWords:       nil,
		BlockedReplacement: "***",
	}
}

// LoadConfig builds a Config from the settings store, falling back to the
// default for any key that is missing or unparseable.
func LoadConfig(ctx context.Context, settings domain.SettingsRepository) Config {
	cfg := DefaultConfig()
	if settings == nil {
		return cfg
	}

	cfg.FilterCommands = boolSetting(ctx, settings, KeyFilterCommands, cfg.FilterCommands)
	cfg.FilterURLs = boolSetting(ctx, settings, KeyFilterURLs, cfg.FilterURLs)
	cfg.FilterBots = boolSetting(ctx, settings, KeyFilterBots, cfg.FilterBots)
	if raw, ok := stringSetting(ctx, settings, KeyBotList); ok {
		cfg.BotNames = botSet(raw)
	}

	cfg.AnnounceUsername = boolSetting(ctx, settings, KeyAnnounceUsername, cfg.AnnounceUsername)
	if style, ok := stringSetting(ctx, settings, KeyAnnounceStyle); ok {
		switch style {
		case AnnounceStyleSays, AnnounceStyleFrom, AnnounceStyleColon:
			cfg.AnnounceStyle = style
		}
	}

	cfg.MinLength = intSetting(ctx, settings, KeyMinLength, cfg.MinLength)
	cfg.MaxLength = intSetting(ctx, settings, KeyMaxLength, cfg.MaxLength)

	cfg.SkipDuplicates = boolSetting(ctx, settings, KeySkipDuplicates, cfg.SkipDuplicates)
	cfg.DuplicateWindow = secondsSetting(ctx, settings, KeyDuplicateWindow, cfg.DuplicateWindow)

	cfg.UserCooldown = secondsSetting(ctx, settings, KeyUserCooldown, cfg.UserCooldown)
	cfg.GlobalCooldown = secondsSetting(ctx, settings, KeyGlobalCooldown, cfg.GlobalCooldown)

	cfg.LimitEmotes = boolSetting(ctx, settings, KeyLimitEmotes, cfg.LimitEmotes)
	cfg.MaxEmotes = intSetting(ctx, settings, KeyMaxEmotes, cfg.MaxEmotes)
	cfg.LimitEmojis = boolSetting(ctx, settings, KeyLimitEmojis, cfg.LimitEmojis)
	cfg.MaxEmojis = intSetting(ctx, settings, KeyMaxEmojis, cfg.MaxEmojis)
	cfg.LimitRepeatedChars = boolSetting(ctx, settings, KeyLimitRepeatedChars, cfg.LimitRepeatedChars)
	cfg.MaxRepeatedChars = intSetting(ctx, settings, KeyMaxRepeatedChars, cfg.MaxRepeatedChars)
	cfg.LimitLongNumbers = boolSetting(ctx, settings, KeyLimitLongNumbers, cfg.LimitLongNumbers)
	cfg.MaxNumberDigits = intSetting(ctx, settings, KeyMaxNumberDigits, cfg.MaxNumberDigits)

	if raw, ok := stringSetting(ctx, settings, KeyBlockedWords); ok {
		cfg.BlockedWords = splitList(raw)
	}
	if raw, ok := stringSetting(ctx, settings, KeyBlockedReplacement); ok && raw != "" {
		cfg.BlockedReplacement = raw
	}

	return cfg
}

func stringSetting(ctx context.Context, settings domain.SettingsRepository, key string) (string, bool) {
	value, ok, err := settings.Get(ctx, key)
	if err != nil || !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func boolSetting(ctx context.Context, settings domain.SettingsRepository, key string, def bool) bool {
	raw, ok := stringSetting(ctx, settings, key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func intSetting(ctx context.Context, settings domain.SettingsRepository, key string, def int) int {
	raw, ok := stringSetting(ctx, settings, key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

func secondsSetting(ctx context.Context, settings domain.SettingsRepository, key string, def time.Duration) time.Duration {
	seconds := intSetting(ctx, settings, key, int(def/time.Second))
	if seconds < 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func botSet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range splitList(raw) {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}
