package domain

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/discord-exporter/internal/gateway"
	"github.com/questx-lab/discord-exporter/internal/repository"
	"github.com/questx-lab/discord-exporter/pkg/api/discord"
	"github.com/questx-lab/discord-exporter/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_metricDomain_Export_Empty(t *testing.T) {
	ctx := testutil.MockContext()
	d := NewMetricDomain(repository.NewStatRepository())

	require.Equal(t, `# TYPE discord_messages_total counter
# HELP discord_messages_total Total number of messages sent by users
# TYPE discord_reactions_total counter
# HELP discord_reactions_total Total number of reactions added by users
# TYPE discord_photos_total counter
# HELP discord_photos_total Total number of photos posted by users
discord_photos_total 0
`, d.Export(ctx))
}

func Test_metricDomain_Export(t *testing.T) {
	ctx := testutil.MockContext()
	statRepo := repository.NewStatRepository()

	statRepo.IncreaseMessage(ctx, "alice#1111")
	statRepo.IncreaseMessage(ctx, "alice#1111")
	statRepo.IncreaseMessage(ctx, "bob#2222")
	statRepo.IncreaseReaction(ctx, "thumbs-up", "bob#2222")
	statRepo.IncreasePhoto(ctx, "alice#1111", 3)

	d := NewMetricDomain(statRepo)
	expected := `# TYPE discord_messages_total counter
# HELP discord_messages_total Total number of messages sent by users
discord_messages_total{user="alice#1111"} 2
discord_messages_total{user="bob#2222"} 1
# TYPE discord_reactions_total counter
# HELP discord_reactions_total Total number of reactions added by users
discord_reactions_total{emoji="thumbs-up",user="bob#2222"} 1
# TYPE discord_photos_total counter
# HELP discord_photos_total Total number of photos posted by users
discord_photos_total{user="alice#1111"} 3
`

	require.Equal(t, expected, d.Export(ctx))

	// The same state always renders the same bytes.
	require.Equal(t, expected, d.Export(ctx))
}

// The end-to-end path from gateway events to the exposition output.
func Test_metricDomain_ExportAfterLiveEvents(t *testing.T) {
	ctx := testutil.MockContext()

	statRepo := repository.NewStatRepository()
	sync := NewSyncDomain(statRepo, repository.NewPhotoRepository(time.Second), &mockEndpoint{
		GetUserFunc: func(ctx context.Context, userID string) (discord.User, error) {
			return discord.User{ID: userID, Username: "bob", Discriminator: "0"}, nil
		},
	}, nil)
	metric := NewMetricDomain(statRepo)

	sync.OnMessageCreate(ctx, gateway.MessageCreateEvent{
		MessageID: "m1",
		ChannelID: "general-channel-id",
		AuthorTag: "alice",
	})
	require.Contains(t, metric.Export(ctx), `discord_messages_total{user="alice"} 1`)

	reaction := gateway.ReactionEvent{
		MessageID: "m1",
		UserID:    "20",
		Emoji:     discord.Emoji{ID: "500", Name: "heart"},
	}

	sync.OnReactionAdd(ctx, reaction)
	require.Contains(t, metric.Export(ctx), `discord_reactions_total{emoji="heart",user="bob"} 1`)

	sync.OnReactionRemove(ctx, reaction)
	require.NotContains(t, metric.Export(ctx), "discord_reactions_total{")
}
