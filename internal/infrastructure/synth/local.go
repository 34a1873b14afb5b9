package synth

import (
	"context"
	"fmt"
	"sync"

	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/hegedustibor/htgo-tts/handlers"
	"github.com/hegedustibor/htgo-tts/voices"
)

// LocalEngine drives htgo-tts with the native playback handler. The
// engine has no speed or pitch controls; those item parameters only
// affect vendor-synthesized audio.
type LocalEngine struct {
	folder string
	mu     sync.Mutex
}

// NewLocalEngine keeps the engine's temporary audio files under folder.
func NewLocalEngine(folder string) *LocalEngine {
	if folder == "" {
		folder = "audio"
	}
	return &LocalEngine{folder: folder}
}

func (e *LocalEngine) Speak(ctx context.Context, text, voiceID string) error {
	if voiceID == "" {
		voiceID = voices.English
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	speech := htgotts.Speech{
		Folder:   e.folder,
		Language: voiceID,
		Handler:  &handlers.Native{},
	}

	done := make(chan error, 1)
	go func() {
		done <- speech.Speak(text)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("local engine: %w", err)
		}
		return nil
	case <-ctx.Done():
		// Speak has no cancellation hook; the goroutine drains on its own.
		return ctx.Err()
	}
}
