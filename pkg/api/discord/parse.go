package discord

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/discord-exporter/pkg/api"
)

// Discord snowflakes count milliseconds since 2015-01-01T00:00:00Z.
const discordEpoch = 1420070400000

func parseGuild(obj api.JSON) (Guild, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return Guild{}, err
	}

	name, err := obj.GetString("name")
	if err != nil {
		return Guild{}, err
	}

	ownerID, err := obj.GetString("owner_id")
	if err != nil {
		return Guild{}, err
	}

	return Guild{ID: id, Name: name, OwnerID: ownerID}, nil
}

func parseChannel(obj api.JSON) (Channel, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return Channel{}, err
	}

	name, err := obj.GetString("name")
	if err != nil {
		return Channel{}, err
	}

	channelType, err := obj.GetInt("type")
	if err != nil {
		return Channel{}, err
	}

	return Channel{ID: id, Name: name, Type: channelType}, nil
}

func parseUser(obj api.JSON) (User, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return User{}, err
	}

	username, err := obj.GetString("username")
	if err != nil {
		return User{}, err
	}

	discriminator, err := obj.GetString("discriminator")
	if err != nil {
		return User{}, err
	}

	return User{ID: id, Username: username, Discriminator: discriminator}, nil
}

func parseMessage(obj api.JSON) (Message, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return Message{}, err
	}

	channelID, err := obj.GetString("channel_id")
	if err != nil {
		return Message{}, err
	}

	content, err := obj.GetString("content")
	if err != nil {
		return Message{}, err
	}

	authorObj, err := obj.GetJSON("author")
	if err != nil {
		return Message{}, err
	}

	author, err := parseUser(authorObj)
	if err != nil {
		return Message{}, err
	}

	createdAt, err := obj.GetTime("timestamp", iso8601)
	if err != nil {
		// Old messages occasionally miss the timestamp field; the creation
		// time is still recoverable from the snowflake id.
		createdAt = SnowflakeTime(id)
	}

	message := Message{
		ID:        id,
		ChannelID: channelID,
		Content:   content,
		Author:    author,
		CreatedAt: createdAt,
	}

	if attachments, err := obj.GetArray("attachments"); err == nil {
		for _, attachmentObj := range attachments {
			attachment, err := parseAttachment(attachmentObj)
			if err != nil {
				return Message{}, err
			}

			message.Attachments = append(message.Attachments, attachment)
		}
	}

	if reactions, err := obj.GetArray("reactions"); err == nil {
		for _, reactionObj := range reactions {
			reaction, err := parseReaction(reactionObj)
			if err != nil {
				return Message{}, err
			}

			message.Reactions = append(message.Reactions, reaction)
		}
	}

	return message, nil
}

func parseAttachment(obj api.JSON) (Attachment, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return Attachment{}, err
	}

	filename, err := obj.GetString("filename")
	if err != nil {
		return Attachment{}, err
	}

	url, err := obj.GetString("url")
	if err != nil {
		return Attachment{}, err
	}

	attachment := Attachment{ID: id, Filename: filename, URL: url}

	// Dimensions only exist for visual media; a missing or null field means
	// unknown and stays zero.
	if width, err := obj.GetInt("width"); err == nil {
		attachment.Width = width
	}
	if height, err := obj.GetInt("height"); err == nil {
		attachment.Height = height
	}

	return attachment, nil
}

func parseReaction(obj api.JSON) (Reaction, error) {
	count, err := obj.GetInt("count")
	if err != nil {
		return Reaction{}, err
	}

	name, err := obj.GetString("emoji.name")
	if err != nil {
		return Reaction{}, err
	}

	emojiID, err := obj.GetString("emoji.id")
	if err != nil {
		return Reaction{}, err
	}

	return Reaction{Emoji: Emoji{ID: emojiID, Name: name}, Count: count}, nil
}

// SnowflakeTime extracts the creation time encoded in a Discord id.
func SnowflakeTime(id string) time.Time {
	sf, err := snowflake.ParseString(id)
	if err != nil {
		return time.Time{}
	}

	return time.UnixMilli(int64(sf)>>22 + discordEpoch).UTC()
}
