package repository

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/discord-exporter/internal/entity"
	"golang.org/x/exp/slices"
)

type PhotoRepository interface {
	Append(ctx context.Context, photos ...entity.Photo)
	ReplaceAll(ctx context.Context, photos []entity.Photo)

	// Latest returns up to limit photos ordered from newest to oldest.
	Latest(ctx context.Context, limit int) []entity.Photo

	// LatestID returns the id of the most recently appended photo. It reports
	// false while the ledger is empty.
	LatestID(ctx context.Context) (string, bool)

	// Version increases on every mutation of the ledger.
	Version(ctx context.Context) uint64

	// Watch blocks until the latest photo id differs from lastSeenID, then
	// returns it. It returns early with ctx.Err() when the context is done.
	Watch(ctx context.Context, lastSeenID string) (string, error)
}

type photoRepository struct {
	mutex sync.Mutex

	photos  []entity.Photo
	version uint64

	// notify is closed and replaced whenever the ledger mutates, waking every
	// pending Watch call.
	notify chan struct{}

	// watchInterval bounds how long a Watch call sleeps before re-checking,
	// in case a wakeup is missed.
	watchInterval time.Duration
}

func NewPhotoRepository(watchInterval time.Duration) *photoRepository {
	return &photoRepository{
		notify:        make(chan struct{}),
		watchInterval: watchInterval,
	}
}

func (r *photoRepository) Append(ctx context.Context, photos ...entity.Photo) {
	if len(photos) == 0 {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.photos = append(r.photos, photos...)
	r.bump()
}

func (r *photoRepository) ReplaceAll(ctx context.Context, photos []entity.Photo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.photos = append([]entity.Photo{}, photos...)
	r.bump()
}

func (r *photoRepository) Latest(ctx context.Context, limit int) []entity.Photo {
	r.mutex.Lock()
	photos := append([]entity.Photo{}, r.photos...)
	r.mutex.Unlock()

	// Stable keeps the append order for photos sharing a creation time, such
	// as multiple attachments of one message.
	slices.SortStableFunc(photos, func(a, b entity.Photo) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}

	return photos
}

func (r *photoRepository) LatestID(ctx context.Context) (string, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.photos) == 0 {
		return "", false
	}

	return r.photos[len(r.photos)-1].ID, true
}

func (r *photoRepository) Version(ctx context.Context) uint64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.version
}

func (r *photoRepository) Watch(ctx context.Context, lastSeenID string) (string, error) {
	for {
		r.mutex.Lock()
		var latest string
		if len(r.photos) > 0 {
			latest = r.photos[len(r.photos)-1].ID
		}
		notify := r.notify
		r.mutex.Unlock()

		if latest != lastSeenID {
			return latest, nil
		}

		timer := time.NewTimer(r.watchInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return latest, ctx.Err()
		case <-notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// bump must be called with the mutex held.
func (r *photoRepository) bump() {
	r.version++
	close(r.notify)
	r.notify = make(chan struct{})
}
