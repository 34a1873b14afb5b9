package domain

import (
	"fmt"
	"strings"
)

// Provider identifies the speech-synthesis backend of a queue item.
type Provider string

const (
	ProviderLocal      Provider = "local"
	ProviderGoogle     Provider = "google"
	ProviderAzure      Provider = "azure"
	ProviderElevenLabs Provider = "elevenlabs"
)

// ParseProvider validates a provider tag coming from settings or chat.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderLocal:
		return ProviderLocal, nil
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderAzure:
		return ProviderAzure, nil
	case ProviderElevenLabs:
		return ProviderElevenLabs, nil
	default:
		return "", fmt.Errorf("unknown speech provider %q", s)
	}
}

type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusPlaying   ItemStatus = "playing"
	StatusCompleted ItemStatus = "completed"
	StatusError     ItemStatus = "error"
)

// QueueItem is one pending or active utterance. CachedAudio is filled at
// most once, the first time a non-local synthesis succeeds, so the bytes
// can be re-broadcast without calling the vendor again.
type QueueItem struct {
	ID          string
	Text        string
	VoiceID     string
	Provider    Provider
	Speed       float64
	Pitch       float64
	Volume      float64
	ViewerID    string
	Username    string
	Status      ItemStatus
	CachedAudio []byte
	Error       string
}

// SynthesisError carries the vendor-reported failure message.
type SynthesisError struct {
	Provider Provider
	Message  string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis (%s): %s", e.Provider, e.Message)
}
