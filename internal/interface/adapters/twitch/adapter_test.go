package twitchadapter

import (
	"testing"

	"github.com/adeithe/go-twitch/irc"
	"github.com/stretchr/testify/assert"

	"voxbot/internal/domain"
)

func TestParseEmoteSpans(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want []domain.EmoteSpan
	}{
		{
			name: "empty",
			tag:  "",
			want: nil,
		},
		{
			name: "single emote single range",
			tag:  "25:0-4",
			want: []domain.EmoteSpan{{Start: 0, End: 4}},
		},
		{
			name: "single emote repeated",
			tag:  "25:0-4,6-10",
			want: []domain.EmoteSpan{{Start: 0, End: 4}, {Start: 6, End: 10}},
		},
		{
			name: "multiple emotes",
			tag:  "25:0-4/1902:6-10",
			want: []domain.EmoteSpan{{Start: 0, End: 4}, {Start: 6, End: 10}},
		},
		{
			name: "garbage ranges dropped",
			tag:  "25:zero-four,6-10/oops",
			want: []domain.EmoteSpan{{Start: 6, End: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseEmoteSpans(tt.tag))
		})
	}
}

func TestMapChatMessage(t *testing.T) {
	cm := irc.ChatMessage{
		Channel: "somechannel",
		Text:    "Kappa hi",
		Sender: irc.ChatSender{
			ID:           12345,
			Username:     "Alice",
			DisplayName:  "Alice",
			IsModerator:  true,
			IsSubscriber: true,
		},
	}
	cm.IRCMessage.Tags = map[string]string{"emotes": "25:0-4"}

	msg := mapChatMessage(cm)

	assert.Equal(t, domain.PlatformTwitch, msg.Platform)
	assert.Equal(t, "somechannel", msg.ChannelID)
	assert.Equal(t, "12345", msg.ViewerID)
	assert.Equal(t, "alice", msg.Username, "login is case-folded")
	assert.Equal(t, "Alice", msg.DisplayName)
	assert.Equal(t, []domain.EmoteSpan{{Start: 0, End: 4}}, msg.Emotes)
	assert.True(t, msg.IsModerator)
	assert.False(t, msg.IsOwner)
	assert.Equal(t, []string{"moderator", "subscriber"}, msg.Badges)
}

func TestMapChatMessage_BroadcasterIsModerator(t *testing.T) {
	cm := irc.ChatMessage{
		Sender: irc.ChatSender{ID: 1, Username: "streamer", IsBroadcaster: true},
	}

	msg := mapChatMessage(cm)

	assert.True(t, msg.IsOwner)
	assert.True(t, msg.IsModerator, "the broadcaster passes mod gates")
}
