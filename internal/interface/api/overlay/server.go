// Package overlay exposes the websocket endpoint remote overlay displays
// connect to. Outbound it fans out start/complete frames for every queue
// item; inbound it accepts "audio complete" acknowledgments used when the
// overlay plays the audio instead of the bot.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"voxbot/internal/app/events"
	"voxbot/internal/domain"
)

type Config struct {
	Addr string
	Bus  *events.Bus
}

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	bus      *events.Bus

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	httpSrv *http.Server

	ackMu sync.Mutex
	ackID string
	ackCh chan struct{}
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func NewServer(cfg Config) *Server {
	return &Server{
		addr: cfg.Addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bus:     cfg.Bus,
		clients: make(map[*wsClient]struct{}),
	}
}

// Start runs the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/overlay", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	if s.bus != nil {
		go s.forwardQueueStatus(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("overlay: shutdown error")
		}
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// forwardQueueStatus pushes scheduler status updates to every connected
// overlay so queue UIs stay current.
func (s *Server) forwardQueueStatus(ctx context.Context) {
	ch, unsubscribe := s.bus.Subscribe(events.TopicQueueStatus)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(ctx, envelope{Type: "queue_status", Data: payload})
		}
	}
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("overlay: upgrade error")
		return
	}

	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	clientCount := len(s.clients)
	s.mu.Unlock()

	log.Info().Str("remote", r.RemoteAddr).Int("clients", clientCount).
		Msg("overlay: new connection")

	go s.handleClient(ctx, client)
}

func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	defer func() {
		client.conn.Close()

		s.mu.Lock()
		delete(s.clients, client)
		clientCount := len(s.clients)
		s.mu.Unlock()

		log.Info().Int("clients", clientCount).Msg("overlay: connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("overlay: read error")
			}
			return
		}

		if msgType != websocket.TextMessage {
			continue
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Warn().Err(err).Msg("overlay: malformed inbound frame")
			continue
		}

		if frame.Type == "audio_complete" {
			s.signalAck(frame.ID)
		}
	}
}

// BroadcastStart announces a queue item to every overlay; the payload
// carries the cached audio bytes when synthesis produced any.
func (s *Server) BroadcastStart(ctx context.Context, item domain.OverlayItem) error {
	return s.broadcast(ctx, startFrame{Type: "start", Item: item})
}

func (s *Server) BroadcastComplete(ctx context.Context, itemID string) error {
	return s.broadcast(ctx, completeFrame{Type: "complete", Item: completeItem{ID: itemID}})
}

func (s *Server) broadcast(ctx context.Context, frame any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.writeJSON(json.RawMessage(payload)); err != nil {
			log.Warn().Err(err).Msg("overlay: removing client after write error")
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.conn.Close()
		}
	}

	return nil
}

// WaitAudioComplete blocks until an overlay acknowledges the item's audio
// or ctx expires. Only one item is ever awaited at a time.
func (s *Server) WaitAudioComplete(ctx context.Context, itemID string) error {
	ch := make(chan struct{})

	s.ackMu.Lock()
	s.ackID = itemID
	s.ackCh = ch
	s.ackMu.Unlock()

	defer func() {
		s.ackMu.Lock()
		if s.ackCh == ch {
			s.ackCh = nil
			s.ackID = ""
		}
		s.ackMu.Unlock()
	}()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signalAck releases the waiter. An ack without an id counts for whatever
// item is currently awaited.
func (s *Server) signalAck(itemID string) {
	s.ackMu.Lock()
	defer s.ackMu.Unlock()

	if s.ackCh == nil {
		return
	}
	if itemID != "" && itemID != s.ackID {
		log.Debug().Str("got", itemID).Str("awaiting", s.ackID).
			Msg("overlay: ack for a different item, ignoring")
		return
	}
	close(s.ackCh)
	s.ackCh = nil
	s.ackID = ""
}

// Reachable reports whether at least one overlay is connected.
func (s *Server) Reachable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients) > 0
}

var _ domain.OverlayPort = (*Server)(nil)
