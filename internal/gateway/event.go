package gateway

import (
	"context"
	"time"

	"github.com/questx-lab/discord-exporter/pkg/api/discord"
)

type ReadyEvent struct {
	SessionID string
}

type MessageCreateEvent struct {
	MessageID   string
	ChannelID   string
	GuildID     string
	Content     string
	AuthorTag   string
	AuthorBot   bool
	CreatedAt   time.Time
	Attachments []discord.Attachment
}

type ReactionEvent struct {
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	Emoji     discord.Emoji
}

// Handler consumes the gateway events this service subscribes to. Methods are
// called sequentially from the session read loop.
type Handler interface {
	OnReady(ctx context.Context, event ReadyEvent)
	OnMessageCreate(ctx context.Context, event MessageCreateEvent)
	OnReactionAdd(ctx context.Context, event ReactionEvent)
	OnReactionRemove(ctx context.Context, event ReactionEvent)
}
