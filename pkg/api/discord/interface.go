package discord

import "context"

type IEndpoint interface {
	GetGuild(ctx context.Context, guildID string) (Guild, error)
	GetGuildChannels(ctx context.Context, guildID string) ([]Channel, error)
	GetChannelMessages(ctx context.Context, channelID, beforeID string, limit int) ([]Message, error)
	GetChannelMessage(ctx context.Context, channelID, messageID string) (Message, error)
	GetReactionUsers(ctx context.Context, channelID, messageID string, emoji Emoji) ([]User, error)
	GetUser(ctx context.Context, userID string) (User, error)
}
