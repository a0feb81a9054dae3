package domain

import (
	"context"

	"github.com/questx-lab/discord-exporter/pkg/api/discord"
)

type mockEndpoint struct {
	GetGuildFunc           func(ctx context.Context, guildID string) (discord.Guild, error)
	GetGuildChannelsFunc   func(ctx context.Context, guildID string) ([]discord.Channel, error)
	GetChannelMessagesFunc func(ctx context.Context, channelID, beforeID string, limit int) ([]discord.Message, error)
	GetChannelMessageFunc  func(ctx context.Context, channelID, messageID string) (discord.Message, error)
	GetReactionUsersFunc   func(ctx context.Context, channelID, messageID string, emoji discord.Emoji) ([]discord.User, error)
	GetUserFunc            func(ctx context.Context, userID string) (discord.User, error)
}

func (m *mockEndpoint) GetGuild(ctx context.Context, guildID string) (discord.Guild, error) {
	if m.GetGuildFunc != nil {
		return m.GetGuildFunc(ctx, guildID)
	}

	return discord.Guild{ID: guildID, Name: "mock guild"}, nil
}

func (m *mockEndpoint) GetGuildChannels(ctx context.Context, guildID string) ([]discord.Channel, error) {
	if m.GetGuildChannelsFunc != nil {
		return m.GetGuildChannelsFunc(ctx, guildID)
	}

	return nil, nil
}

func (m *mockEndpoint) GetChannelMessages(
	ctx context.Context, channelID, beforeID string, limit int,
) ([]discord.Message, error) {
	if m.GetChannelMessagesFunc != nil {
		return m.GetChannelMessagesFunc(ctx, channelID, beforeID, limit)
	}

	return nil, nil
}

func (m *mockEndpoint) GetChannelMessage(
	ctx context.Context, channelID, messageID string,
) (discord.Message, error) {
	if m.GetChannelMessageFunc != nil {
		return m.GetChannelMessageFunc(ctx, channelID, messageID)
	}

	return discord.Message{}, nil
}

func (m *mockEndpoint) GetReactionUsers(
	ctx context.Context, channelID, messageID string, emoji discord.Emoji,
) ([]discord.User, error) {
	if m.GetReactionUsersFunc != nil {
		return m.GetReactionUsersFunc(ctx, channelID, messageID, emoji)
	}

	return nil, nil
}

func (m *mockEndpoint) GetUser(ctx context.Context, userID string) (discord.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}

	return discord.User{ID: userID, Username: "user-" + userID, Discriminator: "0"}, nil
}
