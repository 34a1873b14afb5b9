package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	for raw, want := range map[string]Provider{
		"local":      ProviderLocal,
		"Google":     ProviderGoogle,
		" azure ":    ProviderAzure,
		"ELEVENLABS": ProviderElevenLabs,
	} {
		got, err := ParseProvider(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseProvider("bing")
	assert.Error(t, err)
	_, err = ParseProvider("")
	assert.Error(t, err)
}

func TestSpeakerName(t *testing.T) {
	msg := ChatMessage{Username: "alice", DisplayName: "Alice"}
	assert.Equal(t, "Alice", msg.SpeakerName())

	msg.DisplayName = ""
	assert.Equal(t, "alice", msg.SpeakerName())
}
