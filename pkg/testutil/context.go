package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/discord-exporter/config"
	"github.com/questx-lab/discord-exporter/pkg/logger"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
)

func MockContext() context.Context {
	cfg := config.Configs{
		Env: "testing",
		ApiServer: config.ServerConfigs{
			Host:    "localhost",
			Port:    "8080",
			SiteURL: "http://localhost:8080",
		},
		Discord: config.DiscordConfigs{
			BotToken:              "bot-token",
			GuildID:               "guild-id",
			AnnouncementChannelID: "announcement-channel-id",
			PhotoChannelID:        "photo-channel-id",
		},
		Gallery: config.GalleryConfigs{
			Limit:         20,
			WatchInterval: 50 * time.Millisecond,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	return ctx
}
