package queue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/hajimehoshi/oto/v2"
)

// MP3Player plays vendor-synthesized MP3 bytes through the system audio
// device. A single mutex serializes playback; the scheduler never asks
// for two at once anyway.
type MP3Player struct {
	mu sync.Mutex
}

func NewMP3Player() *MP3Player {
	return &MP3Player{}
}

func (p *MP3Player) Play(ctx context.Context, audio []byte, volume float64) error {
	if len(audio) == 0 {
		return errors.New("player: empty audio")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	decoder, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return fmt.Errorf("player: mp3 decoder: %w", err)
	}

	otoCtx, readyChan, err := oto.NewContext(decoder.SampleRate(), 2, 2)
	if err != nil {
		return fmt.Errorf("player: oto context: %w", err)
	}
	<-readyChan

	player := otoCtx.NewPlayer(decoder)
	defer player.Close()

	if volume > 0 && volume != 1 {
		player.SetVolume(volume)
	}
	player.Play()

	ticker := time.NewTicker(15 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !player.IsPlaying() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}
