package events

import (
	"time"

	"voxbot/internal/domain"
)

// QueueItemDTO is the serializable view of a queue item pushed to
// subscribers (overlay status consumers, logs).
type QueueItemDTO struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Username string  `json:"username,omitempty"`
	VoiceID  string  `json:"voice_id"`
	Provider string  `json:"provider"`
	Speed    float64 `json:"speed"`
	Pitch    float64 `json:"pitch"`
	Volume   float64 `json:"volume"`
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
}

func NewQueueItemDTO(item *domain.QueueItem) QueueItemDTO {
	if item == nil {
		return QueueItemDTO{}
	}
	return QueueItemDTO{
		ID:       item.ID,
		Text:     item.Text,
		Username: item.Username,
		VoiceID:  item.VoiceID,
		Provider: string(item.Provider),
		Speed:    item.Speed,
		Pitch:    item.Pitch,
		Volume:   item.Volume,
		Status:   string(item.Status),
		Error:    item.Error,
	}
}

// QueueStatusDTO describes the scheduler state after every transition.
type QueueStatusDTO struct {
	State       string `json:"state"`
	QueueLength int    `json:"queue_length"`
	CurrentID   string `json:"current_id,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

func NewQueueStatusDTO(state string, queueLength int, currentID, lastError string) QueueStatusDTO {
	return QueueStatusDTO{
		State:       state,
		QueueLength: queueLength,
		CurrentID:   currentID,
		LastError:   lastError,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// ChatRejectedDTO reports a message the rules pipeline refused to speak.
type ChatRejectedDTO struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Reason   string `json:"reason"`
}
