package domain

import "context"

// SettingsRepository is the string key/value settings collaborator.
// Get reports ok=false when the key has never been written.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ViewerRepository persists per-viewer restriction records keyed by the
// stable platform user id. Get returns nil when no record exists.
type ViewerRepository interface {
	Get(ctx context.Context, viewerID string) (*ViewerRestriction, error)
	Save(ctx context.Context, record *ViewerRestriction) error
}

// Synthesizer is implemented once per cloud vendor. Calls are idempotent;
// the caller decides whether to retry.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string, speed, volume float64) ([]byte, error)
}

// SpeechEngine drives the local speech backend. Speak resolves when the
// engine reports completion or failure.
type SpeechEngine interface {
	Speak(ctx context.Context, text, voiceID string) error
}

// OverlayPort is the fan-out channel towards connected overlay displays.
// WaitAudioComplete blocks until an overlay acknowledges that the item's
// audio finished, or ctx expires.
type OverlayPort interface {
	BroadcastStart(ctx context.Context, item OverlayItem) error
	BroadcastComplete(ctx context.Context, itemID string) error
	WaitAudioComplete(ctx context.Context, itemID string) error
	Reachable() bool
}

// OverlayItem is the payload of a "start" overlay frame.
type OverlayItem struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Username  string   `json:"username,omitempty"`
	VoiceID   string   `json:"voiceId"`
	Provider  Provider `json:"provider"`
	Speed     float64  `json:"speed"`
	Pitch     float64  `json:"pitch"`
	Volume    float64  `json:"volume"`
	AudioData []byte   `json:"audioData,omitempty"`
}

// OutgoingMessagePort sends a chat reply back to the originating platform.
type OutgoingMessagePort interface {
	SendMessage(ctx context.Context, platform Platform, channelID, text string) error
}

// ViewerResolver maps a login name to the platform's stable user id.
type ViewerResolver interface {
	ResolveViewerID(ctx context.Context, login string) (string, error)
}
