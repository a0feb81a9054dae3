package domain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/questx-lab/discord-exporter/internal/entity"
	"github.com/questx-lab/discord-exporter/internal/model"
	"github.com/questx-lab/discord-exporter/internal/repository"
	"github.com/questx-lab/discord-exporter/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_galleryDomain_RenderPage(t *testing.T) {
	ctx := testutil.MockContext()
	photoRepo := repository.NewPhotoRepository(time.Second)

	base := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	photoRepo.Append(ctx,
		entity.Photo{
			ID:        "1",
			Title:     "sunset by alice#1111",
			URL:       "https://cdn/1.png",
			Width:     800,
			Height:    600,
			CreatedAt: base,
		},
		entity.Photo{
			ID:        "2",
			Title:     "no dimensions by bob#2222",
			URL:       "https://cdn/2.png",
			CreatedAt: base.Add(time.Hour),
		},
	)

	d := NewGalleryDomain(photoRepo)
	page, err := d.RenderPage(ctx)
	require.NoError(t, err)

	require.Contains(t, page, `src="https://cdn/1.png"`)
	require.Contains(t, page, "sunset by alice#1111")
	require.Contains(t, page, `style="width: 133.33333333333331vh"`)

	// Unknown dimensions fall back to auto sizing.
	require.Contains(t, page, `style="width: auto"`)
	require.Contains(t, page, `width="auto" height="auto"`)

	// The poll loop starts from the latest appended id.
	require.Contains(t, page, `const latestId = "2";`)
}

func Test_galleryDomain_RenderPage_Empty(t *testing.T) {
	ctx := testutil.MockContext()
	d := NewGalleryDomain(repository.NewPhotoRepository(time.Second))

	page, err := d.RenderPage(ctx)
	require.NoError(t, err)
	require.Contains(t, page, "const latestId = null;")
	require.NotContains(t, page, "photo-item")
}

func Test_galleryDomain_RenderPage_Limit(t *testing.T) {
	ctx := testutil.MockContext()
	photoRepo := repository.NewPhotoRepository(time.Second)

	base := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	// One photo more than the configured gallery limit.
	for i := 0; i < 21; i++ {
		photoRepo.Append(ctx, entity.Photo{
			ID:        string(rune('a' + i)),
			Title:     "photo",
			URL:       "https://cdn/photo.png",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	d := NewGalleryDomain(photoRepo)
	page, err := d.RenderPage(ctx)
	require.NoError(t, err)

	// The oldest photo is cut off and the poll loop starts from the newest.
	require.Equal(t, 20, strings.Count(page, `class="photo-item"`))
	require.Contains(t, page, `const latestId = "u";`)
}

func Test_galleryDomain_Latest(t *testing.T) {
	ctx := testutil.MockContext()
	photoRepo := repository.NewPhotoRepository(10 * time.Millisecond)
	photoRepo.Append(ctx, entity.Photo{ID: "1"})

	d := NewGalleryDomain(photoRepo)

	// An outdated id resolves immediately.
	resp, err := d.Latest(ctx, &model.LatestPhotoIDRequest{LatestID: "outdated"})
	require.NoError(t, err)
	require.NotNil(t, resp.LatestID)
	require.Equal(t, "1", *resp.LatestID)

	// An up-to-date id blocks until the ledger moves.
	done := make(chan *model.LatestPhotoIDResponse)
	go func() {
		resp, err := d.Latest(ctx, &model.LatestPhotoIDRequest{LatestID: "1"})
		require.NoError(t, err)
		done <- resp
	}()

	time.Sleep(20 * time.Millisecond)
	photoRepo.Append(ctx, entity.Photo{ID: "2"})

	select {
	case resp := <-done:
		require.NotNil(t, resp.LatestID)
		require.Equal(t, "2", *resp.LatestID)
	case <-time.After(time.Second):
		require.FailNow(t, "latest did not resolve after append")
	}
}

func Test_galleryDomain_Latest_Cancelled(t *testing.T) {
	baseCtx := testutil.MockContext()
	d := NewGalleryDomain(repository.NewPhotoRepository(time.Minute))

	ctx, cancel := context.WithCancel(baseCtx)
	cancel()

	_, err := d.Latest(ctx, &model.LatestPhotoIDRequest{})
	require.Error(t, err)
}
