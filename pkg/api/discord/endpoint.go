package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/discord-exporter/config"
	"github.com/questx-lab/discord-exporter/pkg/api"
)

const apiURL = "https://discord.com/api/v10"
const userAgent = "DiscordBot (https://questx.com, 1.0)"
const iso8601 = "2006-01-02T15:04:05.000000-07:00"

const (
	listMessagesResource  = "list_messages"
	reactionUsersResource = "list_reaction_users"
)

// ErrMissingAccess indicates the bot cannot view a channel. Callers treat the
// channel as non-viewable and move on.
var ErrMissingAccess = errors.New("missing access")

type Endpoint struct {
	BotToken string

	apiGenerator      api.Generator
	rateLimitResource *xsync.MapOf[string, *xsync.MapOf[string, time.Time]]
}

func New(cfg config.DiscordConfigs) *Endpoint {
	return &Endpoint{
		BotToken:          cfg.BotToken,
		apiGenerator:      api.NewGenerator(),
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}
}

func (e *Endpoint) GetGuild(ctx context.Context, guildID string) (Guild, error) {
	resp, err := e.apiGenerator.New(apiURL, "/guilds/%s", guildID).
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return Guild{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Guild{}, errors.New("invalid response")
	}

	// If response has the field of code, an error is returned.
	if _, err := body.GetInt("code"); err == nil {
		return Guild{}, errors.New("guild not found")
	}

	return parseGuild(body)
}

func (e *Endpoint) GetGuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	resp, err := e.apiGenerator.New(apiURL, "/guilds/%s/channels", guildID).
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return nil, err
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid response")
	}

	var channels []Channel
	for _, obj := range array {
		channel, err := parseChannel(obj)
		if err != nil {
			return nil, err
		}

		channels = append(channels, channel)
	}

	return channels, nil
}

func (e *Endpoint) GetChannelMessages(
	ctx context.Context, channelID, beforeID string, limit int,
) ([]Message, error) {
	if err := e.checkLimitingResource(listMessagesResource, channelID); err != nil {
		return nil, err
	}

	query := api.Parameter{"limit": strconv.Itoa(limit)}
	if beforeID != "" {
		query["before"] = beforeID
	}

	resp, err := e.apiGenerator.New(apiURL, "/channels/%s/messages", channelID).
		Header("User-Agent", userAgent).
		Query(query).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return nil, err
	}

	if err := e.checkTooManyRequest(resp, listMessagesResource, channelID); err != nil {
		return nil, err
	}

	if resp.Code == http.StatusForbidden || resp.Code == http.StatusNotFound {
		return nil, ErrMissingAccess
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid response")
	}

	var messages []Message
	for _, obj := range array {
		message, err := parseMessage(obj)
		if err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	return messages, nil
}

func (e *Endpoint) GetChannelMessage(ctx context.Context, channelID, messageID string) (Message, error) {
	resp, err := e.apiGenerator.New(apiURL, "/channels/%s/messages/%s", channelID, messageID).
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return Message{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Message{}, errors.New("invalid response")
	}

	if _, err := body.GetInt("code"); err == nil {
		return Message{}, errors.New("message not found")
	}

	return parseMessage(body)
}

func (e *Endpoint) GetReactionUsers(
	ctx context.Context, channelID, messageID string, emoji Emoji,
) ([]User, error) {
	if err := e.checkLimitingResource(reactionUsersResource, channelID); err != nil {
		return nil, err
	}

	resp, err := e.apiGenerator.New(apiURL, "/channels/%s/messages/%s/reactions/%s",
		channelID, messageID, api.PercentEncode(emoji.APIName())).
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return nil, err
	}

	if err := e.checkTooManyRequest(resp, reactionUsersResource, channelID); err != nil {
		return nil, err
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid response")
	}

	var users []User
	for _, obj := range array {
		user, err := parseUser(obj)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, nil
}

func (e *Endpoint) GetUser(ctx context.Context, userID string) (User, error) {
	resp, err := e.apiGenerator.New(apiURL, "/users/%s", userID).
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return User{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return User{}, errors.New("invalid response")
	}

	if _, err := body.GetInt("code"); err == nil {
		return User{}, errors.New("user not found")
	}

	return parseUser(body)
}

func (e *Endpoint) checkLimitingResource(resource, identifier string) error {
	if limit, ok := e.rateLimitResource.Load(resource); ok {
		if resetAt, ok := limit.Load(identifier); ok {
			if resetAt.After(time.Now()) {
				return wrapRateLimit(resetAt.Unix())
			}

			// If the rate limit is reset, delete the limit for this resource.
			limit.Delete(identifier)
		}
	}

	return nil
}

func (e *Endpoint) checkTooManyRequest(resp *api.Response, resource, identifier string) error {
	if resp.Code == http.StatusTooManyRequests {
		resetAt, err := strconv.Atoi(resp.Header.Get("X-Ratelimit-Reset"))
		if err != nil {
			return err
		}

		resourceLimiter, _ := e.rateLimitResource.LoadOrStore(resource, xsync.NewMapOf[time.Time]())
		resourceLimiter.Store(identifier, time.Unix(int64(resetAt), 0))
		return wrapRateLimit(int64(resetAt))
	}

	return nil
}
