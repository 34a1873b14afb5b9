package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeSettings is a map-backed settings store for tests. A key present in
// failKeys returns an error instead of its value.
type fakeSettings struct {
	values   map[string]string
	failKeys map[string]struct{}
}

func newFakeSettings(values map[string]string) *fakeSettings {
	if values == nil {
		values = make(map[string]string)
	}
	return &fakeSettings{values: values, failKeys: make(map[string]struct{})}
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, bool, error) {
	if _, fail := f.failKeys[key]; fail {
		return "", false, errors.New("store unavailable")
	}
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(context.Background(), newFakeSettings(nil))

	assert.True(t, cfg.FilterCommands)
	assert.True(t, cfg.FilterURLs)
	assert.True(t, cfg.FilterBots)
	assert.Equal(t, 0, cfg.MinLength)
	assert.Equal(t, 300, cfg.MaxLength)
	assert.False(t, cfg.SkipDuplicates)
	assert.Equal(t, 30*time.Second, cfg.DuplicateWindow)
	assert.Equal(t, "***", cfg.BlockedReplacement)
	assert.Contains(t, cfg.BotNames, "nightbot")
}

func TestLoadConfig_Overrides(t *testing.T) {
	settings := newFakeSettings(map[string]string{
		KeyFilterCommands:     "false",
		KeyMinLength:          "5",
		KeyMaxLength:          "100",
		KeySkipDuplicates:     "true",
		KeyDuplicateWindow:    "60",
		KeyUserCooldown:       "15",
		KeyBotList:            "MyBot, OtherBot",
		KeyBlockedWords:       "spam, scam",
		KeyBlockedReplacement: "[x]",
		KeyAnnounceStyle:      "from",
	})

	cfg := LoadConfig(context.Background(), settings)

	assert.False(t, cfg.FilterCommands)
	assert.Equal(t, 5, cfg.MinLength)
	assert.Equal(t, 100, cfg.MaxLength)
	assert.True(t, cfg.SkipDuplicates)
	assert.Equal(t, time.Minute, cfg.DuplicateWindow)
	assert.Equal(t, 15*time.Second, cfg.UserCooldown)
	assert.Equal(t, map[string]struct{}{"mybot": {}, "otherbot": {}}, cfg.BotNames)
	assert.Equal(t, []string{"spam", "scam"}, cfg.BlockedWords)
	assert.Equal(t, "[x]", cfg.BlockedReplacement)
	assert.Equal(t, AnnounceStyleFrom, cfg.AnnounceStyle)
}

func TestLoadConfig_UnparseableFallsBackToDefault(t *testing.T) {
	settings := newFakeSettings(map[string]string{
		KeyMinLength:       "lots",
		KeyFilterURLs:      "si",
		KeyUserCooldown:    "-3",
		KeyAnnounceStyle:   "shouting",
		KeyMaxNumberDigits: "",
	})

	cfg := LoadConfig(context.Background(), settings)
	def := DefaultConfig()

	assert.Equal(t, def.MinLength, cfg.MinLength)
	assert.Equal(t, def.FilterURLs, cfg.FilterURLs)
	assert.Equal(t, def.UserCooldown, cfg.UserCooldown)
	assert.Equal(t, def.AnnounceStyle, cfg.AnnounceStyle)
	assert.Equal(t, def.MaxNumberDigits, cfg.MaxNumberDigits)
}

func TestLoadConfig_StoreErrorFallsBackToDefault(t *testing.T) {
	settings := newFakeSettings(map[string]string{KeyMaxLength: "50"})
	settings.failKeys[KeyMaxLength] = struct{}{}

	cfg := LoadConfig(context.Background(), settings)

	assert.Equal(t, DefaultConfig().MaxLength, cfg.MaxLength)
}
