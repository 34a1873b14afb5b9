// Package twitchadapter connects to Twitch chat over IRC.
package twitchadapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/adeithe/go-twitch/irc"
	"github.com/rs/zerolog/log"

	"voxbot/internal/domain"
)

type Config struct {
	Username   string
	OAuthToken string
	Channels   []string
}

type MessageHandler func(ctx context.Context, msg domain.ChatMessage) error

type Adapter struct {
	cfg     Config
	handler MessageHandler

	mu   sync.RWMutex
	conn *irc.Conn
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
	if len(a.cfg.Channels) == 0 {
		return errors.New("twitch: no channels configured")
	}
	if a.cfg.Username == "" || a.cfg.OAuthToken == "" {
		return errors.New("twitch: missing username or oauth token")
	}

	// One plain connection, no sharding.
	conn := &irc.Conn{}

	if err := conn.SetLogin(a.cfg.Username, a.cfg.OAuthToken); err != nil {
		return fmt.Errorf("twitch: SetLogin: %w", err)
	}

	conn.OnMessage(func(cm irc.ChatMessage) {
		a.mu.RLock()
		handler := a.handler
		a.mu.RUnlock()
		if handler == nil {
			return
		}

		msg := mapChatMessage(cm)
		if err := handler(ctx, msg); err != nil {
			log.Error().Err(err).Msg("twitch: handler error")
		}
	})

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("twitch: Connect: %w", err)
	}

	if err := conn.Join(a.cfg.Channels...); err != nil {
		return fmt.Errorf("twitch: Join: %w", err)
	}

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()

	log.Info().Str("username", a.cfg.Username).Strs("channels", a.cfg.Channels).
		Msg("twitch: connected")

	<-ctx.Done()

	a.mu.Lock()
	if a.conn != nil {
		a.conn.Close()
	}
	a.mu.Unlock()

	return ctx.Err()
}

func (a *Adapter) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if platform != domain.PlatformTwitch {
		return fmt.Errorf("twitch adapter does not support platform %s", platform)
	}

	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return errors.New("twitch: connection not started or closed")
	}

	return conn.Say(channelID, text)
}

func mapChatMessage(cm irc.ChatMessage) domain.ChatMessage {
	sender := cm.Sender

	var badges []string
	if sender.IsBroadcaster {
		badges = append(badges, "broadcaster")
	}
	if sender.IsModerator {
		badges = append(badges, "moderator")
	}
	if sender.IsVIP {
		badges = append(badges, "vip")
	}
	if sender.IsSubscriber {
		badges = append(badges, "subscriber")
	}

	return domain.ChatMessage{
		Platform:    domain.PlatformTwitch,
		ChannelID:   cm.Channel,
		ViewerID:    strconv.FormatInt(sender.ID, 10),
		Username:    strings.ToLower(sender.Username),
		DisplayName: sender.DisplayName,
		Text:        cm.Text,
		Timestamp:   cm.CreatedAt,
		Emotes:      parseEmoteSpans(cm.IRCMessage.Tags["emotes"]),
		Badges:      badges,

		IsOwner:      sender.IsBroadcaster,
		IsModerator:  sender.IsBroadcaster || sender.IsModerator,
		IsVIP:        sender.IsVIP,
		IsSubscriber: sender.IsSubscriber,
	}
}

// parseEmoteSpans decodes the IRC emotes tag
// ("id:start-end,start-end/id:start-end") into character ranges. Anything
// unparseable is dropped; the rules pipeline fails open on bad spans
// anyway.
func parseEmoteSpans(tag string) []domain.EmoteSpan {
	if tag == "" {
		return nil
	}

	var spans []domain.EmoteSpan
	for _, emote := range strings.Split(tag, "/") {
		_, ranges, ok := strings.Cut(emote, ":")
		if !ok {
			continue
		}
		for _, rng := range strings.Split(ranges, ",") {
			startRaw, endRaw, ok := strings.Cut(rng, "-")
			if !ok {
				continue
			}
			start, err := strconv.Atoi(startRaw)
			if err != nil {
				continue
			}
			end, err := strconv.Atoi(endRaw)
			if err != nil {
				continue
			}
			spans = append(spans, domain.EmoteSpan{Start: start, End: end})
		}
	}
	return spans
}
