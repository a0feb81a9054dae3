package entity

import "time"

// MessageCount is the number of messages a user posted in the tracked guild.
type MessageCount struct {
	UserTag string
	Count   int
}

// ReactionCount is the number of reactions with a given emoji a user left.
type ReactionCount struct {
	Emoji   string
	UserTag string
	Count   int
}

// PhotoCount is the number of photo attachments a user uploaded.
type PhotoCount struct {
	UserTag string
	Count   int
}

type Announcement struct {
	ID        string
	Content   string
	URL       string
	AuthorTag string

	// ImageURL is the first attachment of the announcement, empty when the
	// message carries none.
	ImageURL string

	CreatedAt time.Time
}

type Photo struct {
	// ID is the attachment snowflake, unique across the guild and monotonic
	// in upload time.
	ID    string
	Title string
	URL   string

	// Width and Height are zero when the dimensions are unknown.
	Width  int
	Height int

	CreatedAt time.Time
}
