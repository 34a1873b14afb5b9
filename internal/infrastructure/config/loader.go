package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds process-level secrets and endpoints. Behavior tuning
// (rules, voices, overlay flags) lives in the settings store instead.
type Config struct {
	TwitchUsername string
	TwitchToken    string
	TwitchChannels []string
	TwitchClientID string
	TwitchAPIToken string

	KickBotToken          string
	KickBroadcasterUserID int
	KickChatroomID        int

	OverlayAddr string
	DBPath      string
	AudioDir    string

	AzureRegion   string
	AzureKey      string
	ElevenLabsKey string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TwitchUsername: os.Getenv("TWITCH_BOT_USERNAME"),
		TwitchToken:    os.Getenv("TWITCH_BOT_ACCESS_TOKEN"),
		TwitchChannels: splitChannels(os.Getenv("TWITCH_BOT_CHANNELS")),
		TwitchClientID: os.Getenv("TWITCH_CLIENT_ID"),
		TwitchAPIToken: os.Getenv("TWITCH_API_ACCESS_TOKEN"),

		KickBotToken:          os.Getenv("KICK_BOT_TOKEN"),
		KickBroadcasterUserID: intEnv("KICK_BROADCASTER_USER_ID"),
		KickChatroomID:        intEnv("KICK_CHATROOM_ID"),

		OverlayAddr: envOr("OVERLAY_ADDR", ":8080"),
		DBPath:      envOr("DB_PATH", "data/voxbot.db"),
		AudioDir:    envOr("AUDIO_DIR", "data/audio"),

		AzureRegion:   os.Getenv("AZURE_SPEECH_REGION"),
		AzureKey:      os.Getenv("AZURE_SPEECH_KEY"),
		ElevenLabsKey: os.Getenv("ELEVENLABS_API_KEY"),
	}

	if cfg.TwitchUsername == "" || cfg.TwitchToken == "" {
		log.Warn().Msg("config: twitch bot credentials not set")
	}

	return cfg, nil
}

func splitChannels(raw string) []string {
	var out []string
	for _, channel := range strings.Split(raw, ",") {
		channel = strings.TrimPrefix(strings.TrimSpace(channel), "#")
		if channel != "" {
			out = append(out, channel)
		}
	}
	return out
}

func envOr(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func intEnv(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("config: not a number, ignoring")
		return 0
	}
	return value
}
