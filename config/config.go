package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	ApiServer ServerConfigs
	Discord   DiscordConfigs
	Gallery   GalleryConfigs
}

type ServerConfigs struct {
	Host string
	Port string
	// SiteURL is the public base URL of this service. It is embedded into the
	// RSS document as the feed and site links.
	SiteURL string
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DiscordConfigs struct {
	BotToken string
	GuildID  string

	// AnnouncementChannelID marks the channel whose messages become feed
	// entries. PhotoChannelID marks the channel whose attachments become
	// gallery photos.
	AnnouncementChannelID string
	PhotoChannelID        string
}

type GalleryConfigs struct {
	// Limit is the number of most recent photos embedded into the gallery page.
	Limit int

	// WatchInterval is the fallback re-check period of the latest-id long poll
	// when no append notification arrives.
	WatchInterval time.Duration
}
