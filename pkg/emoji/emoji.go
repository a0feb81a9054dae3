package emoji

import "github.com/forPelevin/gomoji"

// Name maps a raw emoji glyph to a stable ascii identifier. Unicode emojis
// resolve to their short slug, custom guild emojis keep their raw name.
func Name(raw string) string {
	if raw == "" {
		return "unknown"
	}

	if info, err := gomoji.GetInfo(raw); err == nil {
		return info.Slug
	}

	return raw
}
