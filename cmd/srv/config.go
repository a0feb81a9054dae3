package main

import (
	"os"
	"strconv"
	"time"

	"github.com/questx-lab/discord-exporter/config"
)

func (s *srv) loadConfigs() {
	s.configs = &config.Configs{
		Env: getEnv("ENV", "dev"),
		ApiServer: config.ServerConfigs{
			Host:    getEnv("HOST", "0.0.0.0"),
			Port:    getEnv("PORT", "8080"),
			SiteURL: getEnv("SITE_URL", "http://localhost:8080"),
		},
		Discord: config.DiscordConfigs{
			BotToken:              os.Getenv("DISCORD_TOKEN"),
			GuildID:               os.Getenv("DISCORD_GUILD_ID"),
			AnnouncementChannelID: os.Getenv("DISCORD_ANNOUNCEMENT_CHANNEL_ID"),
			PhotoChannelID:        os.Getenv("DISCORD_PHOTO_CHANNEL_ID"),
		},
		Gallery: config.GalleryConfigs{
			Limit:         getEnvInt("GALLERY_LIMIT", 30),
			WatchInterval: getEnvDuration("GALLERY_WATCH_INTERVAL", time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}

	return fallback
}
