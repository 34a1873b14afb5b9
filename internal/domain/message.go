package domain

import "time"

type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformKick    Platform = "kick"
	PlatformOverlay Platform = "overlay"
)

// EmoteSpan marks a platform-native emote occupying the inclusive rune
// range [Start, End] of the message text.
type EmoteSpan struct {
	Start int
	End   int
}

// ChatMessage is one inbound chat event. Built once by a platform adapter
// and never mutated afterwards.
type ChatMessage struct {
	Platform    Platform
	ChannelID   string
	ViewerID    string
	Username    string // case-folded login
	DisplayName string
	Text        string
	Timestamp   time.Time
	Emotes      []EmoteSpan
	Badges      []string

	IsOwner      bool
	IsModerator  bool
	IsVIP        bool
	IsSubscriber bool
}

// SpeakerName is the name used when a message is announced out loud.
func (m ChatMessage) SpeakerName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// ProcessedMessage is the outcome of running a ChatMessage through the
// rules pipeline. Reason is only set when ShouldSpeak is false.
type ProcessedMessage struct {
	Text        string
	ShouldSpeak bool
	Reason      string
}
