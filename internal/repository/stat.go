package repository

import (
	"context"
	"sync"

	"github.com/questx-lab/discord-exporter/internal/entity"
)

// StatSnapshot is a self-consistent copy of every counter the store holds.
type StatSnapshot struct {
	Messages      []entity.MessageCount
	Reactions     []entity.ReactionCount
	Photos        []entity.PhotoCount
	Announcements []entity.Announcement
}

type StatRepository interface {
	IncreaseMessage(ctx context.Context, userTag string)
	IncreaseReaction(ctx context.Context, emoji, userTag string)

	// DecreaseReaction reports false when the (emoji, user) pair is not
	// tracked. A counter reaching zero is removed entirely.
	DecreaseReaction(ctx context.Context, emoji, userTag string) bool

	IncreasePhoto(ctx context.Context, userTag string, n int)
	AddAnnouncement(ctx context.Context, announcement entity.Announcement)

	GetMessages(ctx context.Context) []entity.MessageCount
	GetReactions(ctx context.Context) []entity.ReactionCount
	GetPhotos(ctx context.Context) []entity.PhotoCount
	GetAnnouncements(ctx context.Context) []entity.Announcement

	Snapshot(ctx context.Context) StatSnapshot
	ReplaceAll(ctx context.Context, snapshot StatSnapshot)
}

type reactionKey struct {
	emoji   string
	userTag string
}

// statRepository keeps all counters in memory. Slices preserve first-seen
// order so every render of the same state is byte-identical.
type statRepository struct {
	mutex sync.Mutex

	messages     []entity.MessageCount
	messageIndex map[string]int

	reactions     []entity.ReactionCount
	reactionIndex map[reactionKey]int

	photos     []entity.PhotoCount
	photoIndex map[string]int

	announcements []entity.Announcement
}

func NewStatRepository() *statRepository {
	return &statRepository{
		messageIndex:  make(map[string]int),
		reactionIndex: make(map[reactionKey]int),
		photoIndex:    make(map[string]int),
	}
}

func (r *statRepository) IncreaseMessage(ctx context.Context, userTag string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if i, ok := r.messageIndex[userTag]; ok {
		r.messages[i].Count++
		return
	}

	r.messageIndex[userTag] = len(r.messages)
	r.messages = append(r.messages, entity.MessageCount{UserTag: userTag, Count: 1})
}

func (r *statRepository) IncreaseReaction(ctx context.Context, emoji, userTag string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := reactionKey{emoji: emoji, userTag: userTag}
	if i, ok := r.reactionIndex[key]; ok {
		r.reactions[i].Count++
		return
	}

	r.reactionIndex[key] = len(r.reactions)
	r.reactions = append(r.reactions, entity.ReactionCount{Emoji: emoji, UserTag: userTag, Count: 1})
}

func (r *statRepository) DecreaseReaction(ctx context.Context, emoji, userTag string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := reactionKey{emoji: emoji, userTag: userTag}
	i, ok := r.reactionIndex[key]
	if !ok {
		return false
	}

	r.reactions[i].Count--
	if r.reactions[i].Count <= 0 {
		r.reactions = append(r.reactions[:i], r.reactions[i+1:]...)
		delete(r.reactionIndex, key)
		for j := i; j < len(r.reactions); j++ {
			r.reactionIndex[reactionKey{
				emoji:   r.reactions[j].Emoji,
				userTag: r.reactions[j].UserTag,
			}] = j
		}
	}

	return true
}

func (r *statRepository) IncreasePhoto(ctx context.Context, userTag string, n int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if i, ok := r.photoIndex[userTag]; ok {
		r.photos[i].Count += n
		return
	}

	r.photoIndex[userTag] = len(r.photos)
	r.photos = append(r.photos, entity.PhotoCount{UserTag: userTag, Count: n})
}

func (r *statRepository) AddAnnouncement(ctx context.Context, announcement entity.Announcement) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.announcements = append(r.announcements, announcement)
}

func (r *statRepository) GetMessages(ctx context.Context) []entity.MessageCount {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]entity.MessageCount{}, r.messages...)
}

func (r *statRepository) GetReactions(ctx context.Context) []entity.ReactionCount {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]entity.ReactionCount{}, r.reactions...)
}

func (r *statRepository) GetPhotos(ctx context.Context) []entity.PhotoCount {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]entity.PhotoCount{}, r.photos...)
}

func (r *statRepository) GetAnnouncements(ctx context.Context) []entity.Announcement {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]entity.Announcement{}, r.announcements...)
}

func (r *statRepository) Snapshot(ctx context.Context) StatSnapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return StatSnapshot{
		Messages:      append([]entity.MessageCount{}, r.messages...),
		Reactions:     append([]entity.ReactionCount{}, r.reactions...),
		Photos:        append([]entity.PhotoCount{}, r.photos...),
		Announcements: append([]entity.Announcement{}, r.announcements...),
	}
}

// ReplaceAll swaps the whole content of the store in one step, including
// counters changed since the snapshot was taken.
func (r *statRepository) ReplaceAll(ctx context.Context, snapshot StatSnapshot) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.messages = append([]entity.MessageCount{}, snapshot.Messages...)
	r.messageIndex = make(map[string]int, len(r.messages))
	for i, m := range r.messages {
		r.messageIndex[m.UserTag] = i
	}

	r.reactions = append([]entity.ReactionCount{}, snapshot.Reactions...)
	r.reactionIndex = make(map[reactionKey]int, len(r.reactions))
	for i, reaction := range r.reactions {
		r.reactionIndex[reactionKey{emoji: reaction.Emoji, userTag: reaction.UserTag}] = i
	}

	r.photos = append([]entity.PhotoCount{}, snapshot.Photos...)
	r.photoIndex = make(map[string]int, len(r.photos))
	for i, p := range r.photos {
		r.photoIndex[p.UserTag] = i
	}

	r.announcements = append([]entity.Announcement{}, snapshot.Announcements...)
}
