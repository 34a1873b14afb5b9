// Package kickadapter connects to Kick chat: inbound over the chatroom
// websocket, outbound through the official SDK.
package kickadapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	kicksdk "github.com/glichtv/kick-sdk"
	kickchatwrapper "github.com/johanvandegriff/kick-chat-wrapper"
	"github.com/rs/zerolog/log"

	"voxbot/internal/domain"
)

type Config struct {
	AccessToken       string
	BroadcasterUserID int

	// ChatroomID is not the broadcaster's user id; it comes from
	// https://kick.com/api/v2/channels/{slug}, field chatroom.id.
	ChatroomID int
}

type MessageHandler func(ctx context.Context, msg domain.ChatMessage) error

type Adapter struct {
	cfg     Config
	handler MessageHandler

	mu  sync.RWMutex
	sdk *kicksdk.Client
	ws  *kickchatwrapper.Client
}

func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

func (a *Adapter) SetHandler(h MessageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = h
}

func (a *Adapter) Start(ctx context.Context) error {
	if a.cfg.AccessToken == "" {
		return errors.New("kick: empty access token")
	}
	if a.cfg.ChatroomID == 0 {
		return errors.New("kick: chatroom id not configured")
	}
	if a.cfg.BroadcasterUserID == 0 {
		return errors.New("kick: broadcaster user id not configured")
	}

	sdkClient := kicksdk.NewClient(
		kicksdk.WithAccessTokens(kicksdk.AccessTokens{
			UserAccessToken: a.cfg.AccessToken,
		}),
	)

	wsClient, err := kickchatwrapper.NewClient()
	if err != nil {
		return fmt.Errorf("kick: creating ws client: %w", err)
	}

	if err := wsClient.JoinChannelByID(a.cfg.ChatroomID); err != nil {
		return fmt.Errorf("kick: JoinChannelByID: %w", err)
	}

	msgChan := wsClient.ListenForMessages()

	a.mu.Lock()
	a.sdk = sdkClient
	a.ws = wsClient
	a.mu.Unlock()

	log.Info().Int("chatroom", a.cfg.ChatroomID).Int("broadcaster", a.cfg.BroadcasterUserID).
		Msg("kick: connected")

	go func() {
		for {
			select {
			case m, ok := <-msgChan:
				if !ok {
					log.Warn().Msg("kick: message channel closed")
					return
				}

				a.mu.RLock()
				handler := a.handler
				a.mu.RUnlock()
				if handler == nil {
					continue
				}

				msg := mapChatMessage(m, a.cfg.BroadcasterUserID)
				if err := handler(ctx, msg); err != nil {
					log.Error().Err(err).Msg("kick: handler error")
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()

	a.mu.Lock()
	if a.ws != nil {
		a.ws.Close()
	}
	a.mu.Unlock()

	return ctx.Err()
}

func (a *Adapter) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if platform != domain.PlatformKick {
		return fmt.Errorf("kick adapter does not support platform %s", platform)
	}

	a.mu.RLock()
	client := a.sdk
	a.mu.RUnlock()

	if client == nil {
		return errors.New("kick: sdk client not initialized")
	}
	if text == "" {
		return nil
	}

	resp, err := client.Chat().PostMessage(ctx, kicksdk.PostChatMessageInput{
		BroadcasterUserID: a.cfg.BroadcasterUserID,
		Content:           text,
		PosterType:        kicksdk.MessagePosterUser,
	})
	if err != nil {
		return fmt.Errorf("kick: sending chat message: %w", err)
	}

	if !resp.Payload.IsSent {
		meta := resp.ResponseMetadata
		return fmt.Errorf("kick: message rejected by the API (status %d: %s)",
			meta.StatusCode, meta.KickErrorDescription)
	}

	return nil
}

func mapChatMessage(m kickchatwrapper.ChatMessage, broadcasterUserID int) domain.ChatMessage {
	sender := m.Sender

	isOwner := sender.ID == broadcasterUserID

	var isMod, isVIP, isSub bool
	var badges []string
	for _, b := range sender.Identity.Badges {
		badge := strings.ToLower(b.Type)
		badges = append(badges, badge)
		switch badge {
		case "moderator", "broadcaster":
			isMod = true
		case "vip":
			isVIP = true
		case "subscriber":
			isSub = true
		}
	}

	return domain.ChatMessage{
		Platform:    domain.PlatformKick,
		ChannelID:   strconv.Itoa(m.ChatroomID),
		ViewerID:    strconv.Itoa(sender.ID),
		Username:    strings.ToLower(sender.Username),
		DisplayName: sender.Username,
		Text:        m.Content,
		Timestamp:   time.Now(),
		Badges:      badges,

		IsOwner:      isOwner,
		IsModerator:  isOwner || isMod,
		IsVIP:        isVIP,
		IsSubscriber: isSub,
	}
}
