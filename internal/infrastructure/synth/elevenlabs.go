package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voxbot/internal/domain"
)

// ElevenLabsSynthesizer posts to the v1 text-to-speech endpoint and
// receives MP3 bytes back.
type ElevenLabsSynthesizer struct {
	apiKey  string
	httpCli *http.Client
}

func NewElevenLabs(apiKey string) *ElevenLabsSynthesizer {
	return &ElevenLabsSynthesizer{
		apiKey:  apiKey,
		httpCli: &http.Client{Timeout: 30 * time.Second},
	}
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, voiceID string, _, _ float64) ([]byte, error) {
	if voiceID == "" {
		return nil, &domain.SynthesisError{Provider: domain.ProviderElevenLabs, Message: "missing voice id"}
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	endpoint := "https://api.elevenlabs.io/v1/text-to-speech/" + voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpCli.Do(req)
	if err != nil {
		return nil, &domain.SynthesisError{Provider: domain.ProviderElevenLabs, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.SynthesisError{
			Provider: domain.ProviderElevenLabs,
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return io.ReadAll(resp.Body)
}
