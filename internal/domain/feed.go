package domain

import (
	"context"
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/questx-lab/discord-exporter/internal/entity"
	"github.com/questx-lab/discord-exporter/internal/repository"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
	"golang.org/x/exp/slices"
)

const (
	noTitleSentinel   = "no title"
	noContentSentinel = "(no content)"
)

// headingPattern matches a markdown heading on the first line of an
// announcement.
var headingPattern = regexp.MustCompile(`^#+\s+(.*)`)

type FeedDomain interface {
	ExportRSS(ctx context.Context) (string, error)
}

type feedDomain struct {
	statRepo repository.StatRepository
}

func NewFeedDomain(statRepo repository.StatRepository) *feedDomain {
	return &feedDomain{statRepo: statRepo}
}

func (d *feedDomain) ExportRSS(ctx context.Context) (string, error) {
	cfg := xcontext.Configs(ctx).ApiServer

	feed := &feeds.Feed{
		Title:       "Discord Announcements",
		Description: "Latest announcements from Discord",
		Link:        &feeds.Link{Href: cfg.SiteURL},
	}

	announcements := d.statRepo.GetAnnouncements(ctx)
	slices.SortStableFunc(announcements, func(a, b entity.Announcement) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	for _, announcement := range announcements {
		if strings.TrimSpace(announcement.Content) == "" {
			continue
		}

		title, description := splitAnnouncement(announcement.Content)
		item := &feeds.Item{
			Title:       title,
			Description: description,
			Link:        &feeds.Link{Href: announcement.URL},
			Author:      &feeds.Author{Name: announcement.AuthorTag},
			Created:     announcement.CreatedAt,
		}

		if announcement.ImageURL != "" {
			item.Enclosure = &feeds.Enclosure{
				Url:    announcement.ImageURL,
				Type:   mime.TypeByExtension(path.Ext(announcement.ImageURL)),
				Length: "0",
			}
		}

		feed.Items = append(feed.Items, item)
	}

	return feed.ToRss()
}

// splitAnnouncement derives the feed entry title and description from raw
// announcement content. A leading markdown heading becomes the title and the
// remaining lines are joined with a full-width space. Single-line content is
// its own title. Multi-line content without a heading keeps its full text as
// the description under a sentinel title.
func splitAnnouncement(content string) (string, string) {
	lines := strings.Split(content, "\n")

	var title, description string
	if match := headingPattern.FindStringSubmatch(lines[0]); match != nil {
		title = match[1]
		description = strings.Join(lines[1:], "　")
	} else if len(lines) == 1 {
		title = content
	} else {
		title = noTitleSentinel
		description = content
	}

	if description == "" {
		description = noContentSentinel
	}

	return title, description
}
