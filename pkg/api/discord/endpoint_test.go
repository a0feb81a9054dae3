package discord

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/discord-exporter/pkg/api"
	"github.com/questx-lab/discord-exporter/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func mockEndpoint(client api.MockAPIClient) *Endpoint {
	return &Endpoint{
		BotToken:          "bot-token",
		apiGenerator:      &api.MockAPIGenerator{MockClient: client},
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}
}

func Test_Endpoint_GetChannelMessages(t *testing.T) {
	ctx := testutil.MockContext()

	endpoint := mockEndpoint(api.MockAPIClient{
		GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{Code: http.StatusOK, Body: api.Array{
				{
					"id":         "111",
					"channel_id": "222",
					"content":    "hello",
					"author": api.JSON{
						"id":            "10",
						"username":      "alice",
						"discriminator": "1111",
					},
					"timestamp": "2023-04-05T12:30:45.123000+00:00",
					"attachments": api.Array{
						{
							"id":       "333",
							"filename": "sunset.png",
							"url":      "https://cdn.discordapp.com/attachments/222/333/sunset.png",
							"width":    800,
							"height":   600,
						},
					},
					"reactions": api.Array{
						{"count": 2, "emoji": api.JSON{"id": nil, "name": "\U0001F44D"}},
					},
				},
			}}, nil
		},
	})

	messages, err := endpoint.GetChannelMessages(ctx, "222", "", 100)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	message := messages[0]
	require.Equal(t, "111", message.ID)
	require.Equal(t, "222", message.ChannelID)
	require.Equal(t, "hello", message.Content)
	require.Equal(t, "alice#1111", message.Author.Tag())
	require.Equal(t,
		time.Date(2023, 4, 5, 12, 30, 45, 123000000, time.UTC),
		message.CreatedAt.UTC())

	require.Len(t, message.Attachments, 1)
	require.Equal(t, "333", message.Attachments[0].ID)
	require.Equal(t, 800, message.Attachments[0].Width)
	require.Equal(t, 600, message.Attachments[0].Height)

	require.Len(t, message.Reactions, 1)
	require.Equal(t, "\U0001F44D", message.Reactions[0].Emoji.Name)
	require.Empty(t, message.Reactions[0].Emoji.ID)
	require.Equal(t, 2, message.Reactions[0].Count)
}

func Test_Endpoint_GetChannelMessages_MissingAccess(t *testing.T) {
	ctx := testutil.MockContext()

	endpoint := mockEndpoint(api.MockAPIClient{
		GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{Code: http.StatusForbidden, Body: api.JSON{"code": 50001}}, nil
		},
	})

	_, err := endpoint.GetChannelMessages(ctx, "222", "", 100)
	require.ErrorIs(t, err, ErrMissingAccess)
}

func Test_Endpoint_GetChannelMessages_TooManyRequest(t *testing.T) {
	ctx := testutil.MockContext()
	resetAt := time.Now().Add(time.Hour)

	calls := 0
	endpoint := mockEndpoint(api.MockAPIClient{
		GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			calls++
			header := http.Header{}
			header.Set("X-Ratelimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			return &api.Response{
				Code:   http.StatusTooManyRequests,
				Header: header,
				Body:   api.JSON{"message": "You are being rate limited."},
			}, nil
		},
	})

	_, err := endpoint.GetChannelMessages(ctx, "222", "", 100)
	gotReset, ok := IsRateLimit(err)
	require.True(t, ok)
	require.Equal(t, resetAt.Unix(), gotReset.Unix())
	require.Equal(t, 1, calls)

	// The next call is rejected locally until the limit resets.
	_, err = endpoint.GetChannelMessages(ctx, "222", "", 100)
	_, ok = IsRateLimit(err)
	require.True(t, ok)
	require.Equal(t, 1, calls)

	// Another channel is not limited by this resource.
	_, err = endpoint.GetChannelMessages(ctx, "999", "", 100)
	_, ok = IsRateLimit(err)
	require.True(t, ok)
	require.Equal(t, 2, calls)
}

func Test_Endpoint_GetUser(t *testing.T) {
	ctx := testutil.MockContext()

	endpoint := mockEndpoint(api.MockAPIClient{
		GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{Code: http.StatusOK, Body: api.JSON{
				"id":            "10",
				"username":      "modernalice",
				"discriminator": "0",
			}}, nil
		},
	})

	user, err := endpoint.GetUser(ctx, "10")
	require.NoError(t, err)
	require.Equal(t, "modernalice", user.Tag())
}

func Test_SnowflakeTime(t *testing.T) {
	// 175928847299117063 >> 22 ms after the Discord epoch.
	at := SnowflakeTime("175928847299117063")
	require.Equal(t, time.Date(2016, 4, 30, 11, 18, 25, 796000000, time.UTC), at)
}
