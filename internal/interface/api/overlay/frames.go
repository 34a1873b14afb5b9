package overlay

import "voxbot/internal/domain"

// Wire frames. AudioData inside the item marshals to base64, so overlays
// can decode and play the clip without a second request.

type startFrame struct {
	Type string             `json:"type"`
	Item domain.OverlayItem `json:"item"`
}

type completeItem struct {
	ID string `json:"id"`
}

type completeFrame struct {
	Type string       `json:"type"`
	Item completeItem `json:"item"`
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// inboundFrame is what an overlay may send back; only audio_complete is
// understood today.
type inboundFrame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}
