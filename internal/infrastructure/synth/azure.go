package synth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voxbot/internal/domain"
)

// AzureSynthesizer calls the Cognitive Services speech endpoint with an
// SSML body. Speed maps to the prosody rate attribute.
type AzureSynthesizer struct {
	region  string
	key     string
	httpCli *http.Client
}

func NewAzure(region, key string) *AzureSynthesizer {
	return &AzureSynthesizer{
		region:  region,
		key:     key,
		httpCli: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *AzureSynthesizer) Synthesize(ctx context.Context, text, voiceID string, speed, _ float64) ([]byte, error) {
	if voiceID == "" {
		voiceID = "en-US-JennyNeural"
	}

	ssml := buildSSML(text, voiceID, speed)
	endpoint := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", s.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-48kbitrate-mono-mp3")

	resp, err := s.httpCli.Do(req)
	if err != nil {
		return nil, &domain.SynthesisError{Provider: domain.ProviderAzure, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.SynthesisError{
			Provider: domain.ProviderAzure,
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return io.ReadAll(resp.Body)
}

func buildSSML(text, voiceID string, speed float64) string {
	rate := ""
	if speed > 0 && speed != 1 {
		rate = fmt.Sprintf(` rate="%+.0f%%"`, (speed-1)*100)
	}
	lang := "en-US"
	if parts := strings.SplitN(voiceID, "-", 3); len(parts) >= 2 {
		lang = parts[0] + "-" + parts[1]
	}
	return fmt.Sprintf(
		`<speak version="1.0" xml:lang="%s"><voice name="%s"><prosody%s>%s</prosody></voice></speak>`,
		lang, voiceID, rate, escapeXML(text),
	)
}

func escapeXML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(text)
}
