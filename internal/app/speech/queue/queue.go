// Package queue schedules speech playback: strict FIFO, one active item
// at a time, never overlapping two utterances across the local engine,
// vendor audio playback and the overlay channel.
package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"voxbot/internal/app/events"
	"voxbot/internal/domain"
)

// KeyOverlayHandlesAudio mutes local playback while a reachable overlay
// plays the audio itself; the queue then waits for the overlay's
// acknowledgment instead.
const KeyOverlayHandlesAudio = "overlay.handles_audio"

const defaultAckTimeout = 30 * time.Second

// AudioPlayer plays synthesized audio bytes, resolving on natural end,
// decode failure or ctx cancellation.
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte, volume float64) error
}

// SpeakRecorder stamps a viewer's last speak time after playback.
type SpeakRecorder interface {
	RecordSpeak(ctx context.Context, viewerID string) error
}

type Config struct {
	Synthesizers map[domain.Provider]domain.Synthesizer
	Engine       domain.SpeechEngine
	Player       AudioPlayer
	Overlay      domain.OverlayPort
	Settings     domain.SettingsRepository
	Recorder     SpeakRecorder
	Bus          *events.Bus
	AckTimeout   time.Duration
}

type Queue struct {
	cfg Config

	mu            sync.Mutex
	cond          *sync.Cond
	items         []*domain.QueueItem
	current       *domain.QueueItem
	cancelCurrent context.CancelFunc
	closed        bool
	lastError     string

	wg sync.WaitGroup
}

func New(cfg Config) *Queue {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	q := &Queue{cfg: cfg}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the scheduler loop. It parks when the queue is empty and
// exits when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		<-ctx.Done()
		q.mu.Lock()
		q.closed = true
		if q.cancelCurrent != nil {
			q.cancelCurrent()
		}
		q.mu.Unlock()
		q.cond.Broadcast()
	}()
	go func() {
		defer q.wg.Done()
		q.run(ctx)
	}()
	q.publishStatus("idle")
}

func (q *Queue) run(ctx context.Context) {
	for {
		item, ok := q.next(ctx)
		if !ok {
			return
		}
		q.process(ctx, item)
	}
}

// next blocks until an item is available, pops it off the head and marks
// it playing. The pop and the "currently playing" transition happen under
// one lock so no second item can slip in.
func (q *Queue) next(ctx context.Context) (*domain.QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return nil, false
		}
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			item.Status = domain.StatusPlaying
			q.current = item
			return item, true
		}

		q.cond.Wait()
		if ctx.Err() != nil {
			return nil, false
		}
	}
}

func (q *Queue) process(ctx context.Context, item *domain.QueueItem) {
	childCtx, cancel := context.WithCancel(ctx)
	q.setCancel(cancel)
	defer q.clearCurrent()

	q.publish(events.TopicItemStarted, events.NewQueueItemDTO(item))
	q.publishStatus("speaking")

	var itemErr error

	if item.Provider != domain.ProviderLocal && len(item.CachedAudio) == 0 {
		itemErr = q.synthesize(childCtx, item)
		if itemErr != nil {
			// The overlay broadcast below simply carries no audio payload.
			log.Error().Err(itemErr).Str("item", item.ID).Msg("queue: synthesis failed")
		}
	}

	if err := q.cfg.Overlay.BroadcastStart(ctx, overlayItem(item)); err != nil {
		log.Warn().Err(err).Str("item", item.ID).Msg("queue: start broadcast failed")
	}

	if err := q.speak(childCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			// Skipped: the item still finishes normally.
			log.Debug().Str("item", item.ID).Msg("queue: playback cancelled")
		} else if itemErr == nil {
			itemErr = err
		}
	}

	if itemErr != nil {
		item.Status = domain.StatusError
		item.Error = itemErr.Error()
		q.setLastError(itemErr.Error())
		q.publish(events.TopicAppError, itemErr.Error())
	} else {
		item.Status = domain.StatusCompleted
	}

	// Complete is broadcast even on error so overlays never hang on a
	// stuck item.
	if err := q.cfg.Overlay.BroadcastComplete(ctx, item.ID); err != nil {
		log.Warn().Err(err).Str("item", item.ID).Msg("queue: complete broadcast failed")
	}

	if item.ViewerID != "" && q.cfg.Recorder != nil {
		if err := q.cfg.Recorder.RecordSpeak(ctx, item.ViewerID); err != nil {
			log.Warn().Err(err).Str("viewer", item.ViewerID).Msg("queue: record speak failed")
		}
	}

	q.publish(events.TopicItemCompleted, events.NewQueueItemDTO(item))
}

func (q *Queue) synthesize(ctx context.Context, item *domain.QueueItem) error {
	synth, ok := q.cfg.Synthesizers[item.Provider]
	if !ok {
		return &domain.SynthesisError{Provider: item.Provider, Message: "no synthesizer configured"}
	}
	audio, err := synth.Synthesize(ctx, item.Text, item.VoiceID, item.Speed, item.Volume)
	if err != nil {
		return err
	}
	item.CachedAudio = audio
	return nil
}

func (q *Queue) speak(ctx context.Context, item *domain.QueueItem) error {
	if q.overlayHandlesAudio(ctx) {
		return q.awaitOverlay(ctx, item.ID)
	}

	if item.Provider == domain.ProviderLocal {
		return q.cfg.Engine.Speak(ctx, item.Text, item.VoiceID)
	}

	if len(item.CachedAudio) == 0 {
		// Synthesis failed earlier; nothing to play.
		return nil
	}
	return q.cfg.Player.Play(ctx, item.CachedAudio, item.Volume)
}

func (q *Queue) awaitOverlay(ctx context.Context, itemID string) error {
	ackCtx, cancel := context.WithTimeout(ctx, q.cfg.AckTimeout)
	defer cancel()

	err := q.cfg.Overlay.WaitAudioComplete(ackCtx, itemID)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Str("item", itemID).Dur("timeout", q.cfg.AckTimeout).
			Msg("queue: overlay never acknowledged, treating as complete")
		return nil
	}
	return err
}

func (q *Queue) overlayHandlesAudio(ctx context.Context) bool {
	if q.cfg.Settings == nil || q.cfg.Overlay == nil {
		return false
	}
	raw, ok, err := q.cfg.Settings.Get(ctx, KeyOverlayHandlesAudio)
	if err != nil || !ok {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil || !enabled {
		return false
	}
	return q.cfg.Overlay.Reachable()
}

// Enqueue appends the item with pending status. The scheduler wakes up if
// it was parked.
func (q *Queue) Enqueue(ctx context.Context, item *domain.QueueItem) error {
	if item == nil {
		return errors.New("queue: nil item")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("queue: stopped")
	}

	item.Status = domain.StatusPending
	q.items = append(q.items, item)
	q.cond.Signal()
	return nil
}

// Skip cancels only the current item's playback or overlay wait. The
// completion handler still runs and the scheduler advances normally.
func (q *Queue) Skip() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancelCurrent != nil {
		q.cancelCurrent()
	}
}

// Clear discards all queued items and cancels any in-flight playback.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	if q.cancelCurrent != nil {
		q.cancelCurrent()
	}
}

// Peek returns a copy of the currently playing item (nil when idle) plus
// a snapshot of the pending items in play order.
func (q *Queue) Peek() (*domain.QueueItem, []domain.QueueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var current *domain.QueueItem
	if q.current != nil {
		c := *q.current
		current = &c
	}
	pending := make([]domain.QueueItem, 0, len(q.items))
	for _, item := range q.items {
		pending = append(pending, *item)
	}
	return current, pending
}

func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	if q.cancelCurrent != nil {
		q.cancelCurrent()
	}
	q.items = nil
	q.cond.Broadcast()
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

func (q *Queue) setCancel(cancel context.CancelFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelCurrent = cancel
}

func (q *Queue) clearCurrent() {
	q.mu.Lock()
	q.current = nil
	q.cancelCurrent = nil
	idle := len(q.items) == 0
	q.mu.Unlock()
	if idle {
		q.publishStatus("idle")
	}
}

func (q *Queue) setLastError(msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastError = msg
}

func (q *Queue) publishStatus(state string) {
	q.mu.Lock()
	length := len(q.items)
	currentID := ""
	if q.current != nil {
		currentID = q.current.ID
	}
	lastError := q.lastError
	q.mu.Unlock()

	q.publish(events.TopicQueueStatus, events.NewQueueStatusDTO(state, length, currentID, lastError))
}

func (q *Queue) publish(topic string, payload any) {
	if q.cfg.Bus != nil {
		q.cfg.Bus.Publish(topic, payload)
	}
}

func overlayItem(item *domain.QueueItem) domain.OverlayItem {
	return domain.OverlayItem{
		ID:        item.ID,
		Text:      item.Text,
		Username:  item.Username,
		VoiceID:   item.VoiceID,
		Provider:  item.Provider,
		Speed:     item.Speed,
		Pitch:     item.Pitch,
		Volume:    item.Volume,
		AudioData: item.CachedAudio,
	}
}
