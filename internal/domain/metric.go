package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/questx-lab/discord-exporter/internal/repository"
)

type MetricDomain interface {
	// Export renders every counter in the exposition text format. Output is
	// byte-identical for identical store state.
	Export(ctx context.Context) string
}

type metricDomain struct {
	statRepo repository.StatRepository
}

func NewMetricDomain(statRepo repository.StatRepository) *metricDomain {
	return &metricDomain{statRepo: statRepo}
}

func (d *metricDomain) Export(ctx context.Context) string {
	var b strings.Builder

	b.WriteString("# TYPE discord_messages_total counter\n")
	b.WriteString("# HELP discord_messages_total Total number of messages sent by users\n")
	for _, message := range d.statRepo.GetMessages(ctx) {
		fmt.Fprintf(&b, "discord_messages_total{user=\"%s\"} %d\n", message.UserTag, message.Count)
	}

	b.WriteString("# TYPE discord_reactions_total counter\n")
	b.WriteString("# HELP discord_reactions_total Total number of reactions added by users\n")
	for _, reaction := range d.statRepo.GetReactions(ctx) {
		fmt.Fprintf(&b, "discord_reactions_total{emoji=\"%s\",user=\"%s\"} %d\n",
			reaction.Emoji, reaction.UserTag, reaction.Count)
	}

	b.WriteString("# TYPE discord_photos_total counter\n")
	b.WriteString("# HELP discord_photos_total Total number of photos posted by users\n")
	photos := d.statRepo.GetPhotos(ctx)
	for _, photo := range photos {
		fmt.Fprintf(&b, "discord_photos_total{user=\"%s\"} %d\n", photo.UserTag, photo.Count)
	}
	if len(photos) == 0 {
		// An explicit zero line, so the metric never disappears from scrapes.
		b.WriteString("discord_photos_total 0\n")
	}

	return b.String()
}
