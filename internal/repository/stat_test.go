package repository

import (
	"context"
	"testing"

	"github.com/questx-lab/discord-exporter/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_statRepository_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStatRepository()

	repo.IncreaseMessage(ctx, "alice#1111")
	repo.IncreaseMessage(ctx, "bob#2222")
	repo.IncreaseMessage(ctx, "alice#1111")

	require.Equal(t, []entity.MessageCount{
		{UserTag: "alice#1111", Count: 2},
		{UserTag: "bob#2222", Count: 1},
	}, repo.GetMessages(ctx))
}

func Test_statRepository_DecreaseReaction(t *testing.T) {
	ctx := context.Background()
	repo := NewStatRepository()

	repo.IncreaseReaction(ctx, "thumbs-up", "alice#1111")
	repo.IncreaseReaction(ctx, "thumbs-up", "alice#1111")
	repo.IncreaseReaction(ctx, "heart", "bob#2222")

	require.True(t, repo.DecreaseReaction(ctx, "thumbs-up", "alice#1111"))
	require.Equal(t, []entity.ReactionCount{
		{Emoji: "thumbs-up", UserTag: "alice#1111", Count: 1},
		{Emoji: "heart", UserTag: "bob#2222", Count: 1},
	}, repo.GetReactions(ctx))

	// The counter is pruned once it reaches zero.
	require.True(t, repo.DecreaseReaction(ctx, "thumbs-up", "alice#1111"))
	require.Equal(t, []entity.ReactionCount{
		{Emoji: "heart", UserTag: "bob#2222", Count: 1},
	}, repo.GetReactions(ctx))

	// A pruned or unknown pair cannot be decreased.
	require.False(t, repo.DecreaseReaction(ctx, "thumbs-up", "alice#1111"))
	require.False(t, repo.DecreaseReaction(ctx, "fire", "carol#3333"))

	// The index still resolves pairs relocated by the prune.
	require.True(t, repo.DecreaseReaction(ctx, "heart", "bob#2222"))
	require.Empty(t, repo.GetReactions(ctx))
}

func Test_statRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := NewStatRepository()

	repo.IncreaseMessage(ctx, "alice#1111")
	repo.IncreaseReaction(ctx, "thumbs-up", "alice#1111")
	repo.IncreasePhoto(ctx, "alice#1111", 3)
	repo.AddAnnouncement(ctx, entity.Announcement{ID: "1", Content: "stale"})

	staging := NewStatRepository()
	staging.IncreaseMessage(ctx, "bob#2222")
	staging.IncreasePhoto(ctx, "bob#2222", 1)

	repo.ReplaceAll(ctx, staging.Snapshot(ctx))

	require.Equal(t, []entity.MessageCount{{UserTag: "bob#2222", Count: 1}}, repo.GetMessages(ctx))
	require.Empty(t, repo.GetReactions(ctx))
	require.Equal(t, []entity.PhotoCount{{UserTag: "bob#2222", Count: 1}}, repo.GetPhotos(ctx))
	require.Empty(t, repo.GetAnnouncements(ctx))

	// The rebuilt index serves writes after the swap.
	repo.IncreaseMessage(ctx, "bob#2222")
	require.Equal(t, []entity.MessageCount{{UserTag: "bob#2222", Count: 2}}, repo.GetMessages(ctx))
}

func Test_statRepository_SnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	repo := NewStatRepository()
	repo.IncreaseMessage(ctx, "alice#1111")

	snapshot := repo.Snapshot(ctx)
	repo.IncreaseMessage(ctx, "alice#1111")

	require.Equal(t, 1, snapshot.Messages[0].Count)
	require.Equal(t, 2, repo.GetMessages(ctx)[0].Count)
}
