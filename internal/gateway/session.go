package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/questx-lab/discord-exporter/config"
	"github.com/questx-lab/discord-exporter/internal/common"
	"github.com/questx-lab/discord-exporter/pkg/api/discord"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
)

const gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

const (
	intentGuilds                = 1 << 0
	intentGuildMessages         = 1 << 9
	intentGuildMessageReactions = 1 << 10
	intentMessageContent        = 1 << 15
)

const reconnectDelay = 5 * time.Second

type payload struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  *int64          `json:"s,omitempty"`
	Type string          `json:"t,omitempty"`
}

type Session struct {
	botToken string
	handler  Handler

	writeMutex sync.Mutex
	conn       *websocket.Conn

	seq int64
}

func NewSession(cfg config.DiscordConfigs, handler Handler) *Session {
	return &Session{botToken: cfg.BotToken, handler: handler}
}

// Run keeps a gateway session alive until the context is done, reconnecting
// with a fixed delay whenever the connection drops.
func (s *Session) Run(ctx context.Context) {
	for {
		if err := s.runOnce(ctx); err != nil {
			xcontext.Logger(ctx).Warnf("Gateway session ended: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Session) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, gatewayURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.conn = conn

	// Unblock the read loop when the context is cancelled.
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopped:
		}
	}()

	heartbeatInterval, err := s.hello(ctx)
	if err != nil {
		return err
	}

	if err := s.identify(ctx); err != nil {
		return err
	}

	heartbeatStopped := make(chan struct{})
	defer close(heartbeatStopped)
	go s.heartbeatLoop(ctx, heartbeatInterval, heartbeatStopped)

	for {
		var p payload
		if err := conn.ReadJSON(&p); err != nil {
			return err
		}

		switch p.Op {
		case opDispatch:
			if p.Seq != nil {
				s.seq = *p.Seq
			}
			s.dispatch(ctx, p.Type, p.Data)

		case opHeartbeat:
			if err := s.heartbeat(); err != nil {
				return err
			}

		case opReconnect:
			return errors.New("gateway requested a reconnect")

		case opInvalidSession:
			return errors.New("gateway invalidated the session")

		case opHeartbeatACK:
		}
	}
}

func (s *Session) hello(ctx context.Context) (time.Duration, error) {
	var p payload
	if err := s.conn.ReadJSON(&p); err != nil {
		return 0, err
	}

	if p.Op != opHello {
		return 0, fmt.Errorf("expected a hello frame, got op %d", p.Op)
	}

	var hello struct {
		HeartbeatInterval int64 `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(p.Data, &hello); err != nil {
		return 0, err
	}

	return time.Duration(hello.HeartbeatInterval) * time.Millisecond, nil
}

func (s *Session) identify(ctx context.Context) error {
	return s.writeJSON(map[string]any{
		"op": opIdentify,
		"d": map[string]any{
			"token":   s.botToken,
			"intents": intentGuilds | intentGuildMessages | intentGuildMessageReactions | intentMessageContent,
			"properties": map[string]any{
				"os":      "linux",
				"browser": "discord-exporter",
				"device":  "discord-exporter",
			},
		},
	})
}

func (s *Session) heartbeatLoop(ctx context.Context, interval time.Duration, stopped <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopped:
			return
		case <-ticker.C:
			if err := s.heartbeat(); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot send heartbeat: %v", err)
				return
			}
		}
	}
}

func (s *Session) heartbeat() error {
	return s.writeJSON(map[string]any{"op": opHeartbeat, "d": s.seq})
}

func (s *Session) writeJSON(v any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	return s.conn.WriteJSON(v)
}

type rawUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Bot           bool   `json:"bot"`
}

type rawAttachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type rawEmoji struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Session) dispatch(ctx context.Context, eventType string, data json.RawMessage) {
	common.PromCounters["gateway_event_total"].WithLabelValues(eventType).Inc()

	switch eventType {
	case "READY":
		var d struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(data, &d); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot parse ready event: %v", err)
			return
		}

		s.handler.OnReady(ctx, ReadyEvent{SessionID: d.SessionID})

	case "MESSAGE_CREATE":
		var d struct {
			ID          string          `json:"id"`
			ChannelID   string          `json:"channel_id"`
			GuildID     string          `json:"guild_id"`
			Content     string          `json:"content"`
			Author      rawUser         `json:"author"`
			Timestamp   string          `json:"timestamp"`
			Attachments []rawAttachment `json:"attachments"`
		}
		if err := json.Unmarshal(data, &d); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot parse message create event: %v", err)
			return
		}

		createdAt, err := time.Parse(time.RFC3339Nano, d.Timestamp)
		if err != nil {
			createdAt = discord.SnowflakeTime(d.ID)
		}

		event := MessageCreateEvent{
			MessageID: d.ID,
			ChannelID: d.ChannelID,
			GuildID:   d.GuildID,
			Content:   d.Content,
			AuthorTag: discord.User{Username: d.Author.Username, Discriminator: d.Author.Discriminator}.Tag(),
			AuthorBot: d.Author.Bot,
			CreatedAt: createdAt,
		}
		for _, attachment := range d.Attachments {
			event.Attachments = append(event.Attachments, discord.Attachment{
				ID:       attachment.ID,
				Filename: attachment.Filename,
				URL:      attachment.URL,
				Width:    attachment.Width,
				Height:   attachment.Height,
			})
		}

		s.handler.OnMessageCreate(ctx, event)

	case "MESSAGE_REACTION_ADD", "MESSAGE_REACTION_REMOVE":
		var d struct {
			UserID    string   `json:"user_id"`
			ChannelID string   `json:"channel_id"`
			MessageID string   `json:"message_id"`
			GuildID   string   `json:"guild_id"`
			Emoji     rawEmoji `json:"emoji"`
		}
		if err := json.Unmarshal(data, &d); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot parse reaction event: %v", err)
			return
		}

		event := ReactionEvent{
			MessageID: d.MessageID,
			ChannelID: d.ChannelID,
			GuildID:   d.GuildID,
			UserID:    d.UserID,
			Emoji:     discord.Emoji{ID: d.Emoji.ID, Name: d.Emoji.Name},
		}

		if eventType == "MESSAGE_REACTION_ADD" {
			s.handler.OnReactionAdd(ctx, event)
		} else {
			s.handler.OnReactionRemove(ctx, event)
		}
	}
}
