package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/questx-lab/discord-exporter/internal/common"
	"github.com/questx-lab/discord-exporter/internal/entity"
	"github.com/questx-lab/discord-exporter/internal/gateway"
	"github.com/questx-lab/discord-exporter/internal/repository"
	"github.com/questx-lab/discord-exporter/pkg/api/discord"
	"github.com/questx-lab/discord-exporter/pkg/emoji"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
)

const crawlPageSize = 100

// photoTitleLimit caps the message content embedded into a photo caption.
const photoTitleLimit = 50

// ErrGuildNotFound aborts startup. Without the guild nothing can be exported.
var ErrGuildNotFound = errors.New("guild not found")

type SyncDomain interface {
	gateway.Handler

	// Resync rebuilds the whole aggregate state from the guild history and
	// replaces the current state with the result.
	Resync(ctx context.Context) error
}

type syncDomain struct {
	statRepo  repository.StatRepository
	photoRepo repository.PhotoRepository
	endpoint  discord.IEndpoint

	// onResyncFailed is called when the startup resync fails. Optional.
	onResyncFailed func(error)
}

func NewSyncDomain(
	statRepo repository.StatRepository,
	photoRepo repository.PhotoRepository,
	endpoint discord.IEndpoint,
	onResyncFailed func(error),
) *syncDomain {
	return &syncDomain{
		statRepo:       statRepo,
		photoRepo:      photoRepo,
		endpoint:       endpoint,
		onResyncFailed: onResyncFailed,
	}
}

func (d *syncDomain) OnReady(ctx context.Context, event gateway.ReadyEvent) {
	xcontext.Logger(ctx).Infof("Gateway session %s is ready", event.SessionID)

	// The crawl runs in background while live events keep arriving. Counters
	// changed by live events during the crawl window are overwritten by the
	// final replace.
	go func() {
		if err := d.Resync(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot resync guild state: %v", err)
			if d.onResyncFailed != nil {
				d.onResyncFailed(err)
			}
		}
	}()
}

func (d *syncDomain) Resync(ctx context.Context) error {
	cfg := xcontext.Configs(ctx).Discord

	guild, err := d.endpoint.GetGuild(ctx, cfg.GuildID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGuildNotFound, err)
	}

	xcontext.Logger(ctx).Infof("Resyncing guild %s", guild.Name)

	channels, err := d.endpoint.GetGuildChannels(ctx, cfg.GuildID)
	if err != nil {
		return err
	}

	staging := repository.NewStatRepository()
	var photos []entity.Photo

	for _, channel := range channels {
		if !channel.IsTextBased() {
			continue
		}

		messages, err := d.crawlChannel(ctx, channel)
		if errors.Is(err, discord.ErrMissingAccess) {
			xcontext.Logger(ctx).Infof("Skipped non-viewable channel #%s", channel.Name)
			continue
		}
		if err != nil {
			return err
		}

		for _, message := range messages {
			d.applyHistory(ctx, staging, &photos, message)
		}
	}

	d.statRepo.ReplaceAll(ctx, staging.Snapshot(ctx))
	d.photoRepo.ReplaceAll(ctx, photos)

	xcontext.Logger(ctx).Infof("Guild state synced")
	return nil
}

// crawlChannel walks the channel history from newest to oldest, one page at a
// time, until a short page signals the beginning of the channel.
func (d *syncDomain) crawlChannel(ctx context.Context, channel discord.Channel) ([]discord.Message, error) {
	var messages []discord.Message
	for {
		xcontext.Logger(ctx).Infof("Fetching messages in channel #%s, current count: %d",
			channel.Name, len(messages))

		var beforeID string
		if len(messages) > 0 {
			beforeID = messages[len(messages)-1].ID
		}

		page, err := d.endpoint.GetChannelMessages(ctx, channel.ID, beforeID, crawlPageSize)
		if resetAt, ok := discord.IsRateLimit(err); ok {
			if err := sleepUntil(ctx, resetAt); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		common.PromCounters["resync_page_total"].WithLabelValues(channel.Name).Inc()

		messages = append(messages, page...)
		if len(page) < crawlPageSize {
			return messages, nil
		}
	}
}

func (d *syncDomain) applyHistory(
	ctx context.Context,
	staging repository.StatRepository,
	photos *[]entity.Photo,
	message discord.Message,
) {
	cfg := xcontext.Configs(ctx).Discord
	staging.IncreaseMessage(ctx, message.Author.Tag())

	for _, reaction := range message.Reactions {
		emojiName := emoji.Name(reaction.Emoji.Name)
		xcontext.Logger(ctx).Debugf("Fetching reaction :%s: in message %s", emojiName, message.ID)

		users, err := d.getReactionUsers(ctx, message.ChannelID, message.ID, reaction.Emoji)
		if err != nil {
			// Skip this reaction, the rest of the crawl goes on.
			xcontext.Logger(ctx).Warnf("Cannot fetch users reacting with :%s: on message %s: %v",
				emojiName, message.ID, err)
			continue
		}

		for _, user := range users {
			staging.IncreaseReaction(ctx, emojiName, user.Tag())
		}
	}

	if message.ChannelID == cfg.AnnouncementChannelID {
		var imageURL string
		if len(message.Attachments) > 0 {
			imageURL = message.Attachments[0].URL
		}

		staging.AddAnnouncement(ctx, entity.Announcement{
			ID:        message.ID,
			Content:   message.Content,
			URL:       discord.MessageURL(cfg.GuildID, message.ChannelID, message.ID),
			AuthorTag: message.Author.Tag(),
			ImageURL:  imageURL,
			CreatedAt: message.CreatedAt,
		})
	}

	if message.ChannelID == cfg.PhotoChannelID && len(message.Attachments) > 0 {
		staging.IncreasePhoto(ctx, message.Author.Tag(), len(message.Attachments))
		*photos = append(*photos,
			buildPhotos(message.Content, message.Author.Tag(), message.CreatedAt, message.Attachments)...)
	}
}

func (d *syncDomain) getReactionUsers(
	ctx context.Context, channelID, messageID string, e discord.Emoji,
) ([]discord.User, error) {
	for {
		users, err := d.endpoint.GetReactionUsers(ctx, channelID, messageID, e)
		if resetAt, ok := discord.IsRateLimit(err); ok {
			if err := sleepUntil(ctx, resetAt); err != nil {
				return nil, err
			}
			continue
		}

		return users, err
	}
}

func (d *syncDomain) OnMessageCreate(ctx context.Context, event gateway.MessageCreateEvent) {
	cfg := xcontext.Configs(ctx).Discord
	d.statRepo.IncreaseMessage(ctx, event.AuthorTag)

	if event.ChannelID == cfg.AnnouncementChannelID {
		xcontext.Logger(ctx).Infof("New announcement by %s: %s",
			event.AuthorTag, discord.MessageURL(event.GuildID, event.ChannelID, event.MessageID))
	}

	if event.ChannelID == cfg.PhotoChannelID && len(event.Attachments) > 0 {
		d.statRepo.IncreasePhoto(ctx, event.AuthorTag, len(event.Attachments))
		d.photoRepo.Append(ctx,
			buildPhotos(event.Content, event.AuthorTag, event.CreatedAt, event.Attachments)...)
	}
}

func (d *syncDomain) OnReactionAdd(ctx context.Context, event gateway.ReactionEvent) {
	emojiName := emoji.Name(event.Emoji.Name)

	user, ok := d.resolveReactor(ctx, event)
	if !ok {
		return
	}

	d.statRepo.IncreaseReaction(ctx, emojiName, user.Tag())
	xcontext.Logger(ctx).Infof("Reaction added: :%s: by %s on message %s",
		emojiName, user.Tag(), event.MessageID)
}

func (d *syncDomain) OnReactionRemove(ctx context.Context, event gateway.ReactionEvent) {
	emojiName := emoji.Name(event.Emoji.Name)

	user, ok := d.resolveReactor(ctx, event)
	if !ok {
		return
	}

	if !d.statRepo.DecreaseReaction(ctx, emojiName, user.Tag()) {
		// A missed add event or a reaction older than the last resync.
		xcontext.Logger(ctx).Errorf("Trying to remove non-existing reaction: :%s: by %s",
			emojiName, user.Tag())
		return
	}

	xcontext.Logger(ctx).Infof("Reaction removed: :%s: by %s on message %s",
		emojiName, user.Tag(), event.MessageID)
}

// resolveReactor completes a reaction event, which only carries ids. A
// reaction on an unfetchable message or by an unfetchable user is skipped.
func (d *syncDomain) resolveReactor(
	ctx context.Context, event gateway.ReactionEvent,
) (discord.User, bool) {
	if _, err := d.endpoint.GetChannelMessage(ctx, event.ChannelID, event.MessageID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot fetch the reacted message %s: %v", event.MessageID, err)
		return discord.User{}, false
	}

	user, err := d.endpoint.GetUser(ctx, event.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot fetch the reacting user %s: %v", event.UserID, err)
		return discord.User{}, false
	}

	return user, true
}

func buildPhotos(
	content, authorTag string, createdAt time.Time, attachments []discord.Attachment,
) []entity.Photo {
	if utf8.RuneCountInString(content) > photoTitleLimit {
		content = string([]rune(content)[:photoTitleLimit]) + "..."
	}

	caption := fmt.Sprintf("%s by %s", content, authorTag)

	var photos []entity.Photo
	for i, attachment := range attachments {
		title := caption
		if len(attachments) > 1 {
			title += fmt.Sprintf(" (%d / %d)", i+1, len(attachments))
		}

		photos = append(photos, entity.Photo{
			ID:        attachment.ID,
			Title:     title,
			URL:       attachment.URL,
			Width:     attachment.Width,
			Height:    attachment.Height,
			CreatedAt: createdAt,
		})
	}

	return photos
}

func sleepUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
