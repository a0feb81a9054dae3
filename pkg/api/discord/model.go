package discord

import (
	"fmt"
	"time"
)

const (
	ChannelTypeGuildText         = 0
	ChannelTypeGuildAnnouncement = 5
)

type Guild struct {
	ID      string
	Name    string
	OwnerID string
}

type Channel struct {
	ID   string
	Name string
	Type int
}

// IsTextBased reports whether the channel carries a readable message history.
func (c Channel) IsTextBased() bool {
	return c.Type == ChannelTypeGuildText || c.Type == ChannelTypeGuildAnnouncement
}

type User struct {
	ID            string
	Username      string
	Discriminator string
}

// Tag returns the user-facing handle. Migrated accounts have a zero
// discriminator and are addressed by the bare username.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}

	return u.Username + "#" + u.Discriminator
}

type Emoji struct {
	ID   string
	Name string
}

// APIName returns the reaction identifier used in REST paths: the raw glyph
// for unicode emojis, name:id for custom ones.
func (e Emoji) APIName() string {
	if e.ID != "" {
		return e.Name + ":" + e.ID
	}

	return e.Name
}

type Reaction struct {
	Emoji Emoji
	Count int
}

type Attachment struct {
	ID       string
	Filename string
	URL      string

	// Width and Height are zero when Discord did not probe the dimensions.
	Width  int
	Height int
}

type Message struct {
	ID          string
	ChannelID   string
	Content     string
	Author      User
	CreatedAt   time.Time
	Attachments []Attachment
	Reactions   []Reaction
}

func MessageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
