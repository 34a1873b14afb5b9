// Package synth holds one Synthesizer implementation per speech vendor
// plus the local engine wrapper.
package synth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"voxbot/internal/domain"
)

const googleChunkSize = 200

// GoogleSynthesizer uses the public translate endpoint. It has no speed
// or volume parameters; those are applied at playback time.
type GoogleSynthesizer struct {
	httpCli *http.Client
}

func NewGoogle() *GoogleSynthesizer {
	return &GoogleSynthesizer{
		httpCli: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text, voiceID string, _, _ float64) ([]byte, error) {
	if voiceID == "" {
		voiceID = "en"
	}

	// The endpoint rejects long inputs, so the text is fetched in chunks
	// and the MP3 segments concatenated.
	runes := []rune(text)
	buf := bytes.NewBuffer(nil)

	for start := 0; start < len(runes); start += googleChunkSize {
		end := start + googleChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		audio, err := s.fetchChunk(ctx, string(runes[start:end]), voiceID)
		if err != nil {
			return nil, err
		}
		buf.Write(audio)
	}

	return buf.Bytes(), nil
}

func (s *GoogleSynthesizer) fetchChunk(ctx context.Context, text, voice string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("tl", voice)
	params.Set("total", "1")
	params.Set("idx", "0")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://translate.google.com/translate_tts?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpCli.Do(req)
	if err != nil {
		return nil, &domain.SynthesisError{Provider: domain.ProviderGoogle, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.SynthesisError{
			Provider: domain.ProviderGoogle,
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return io.ReadAll(resp.Body)
}
