package artwork

import (
	"encoding/base64"
	"strings"
)

// Key derives the cache key for a (track, artist) pair. Both parts are
// trimmed and lowercased first, so semantically equal pairs always map to
// the same key. The memory cache, disk cache, and prefetch coordinator all
// use this key so the tiers agree on identity.
func Key(track, artist string) string {
	cleanTrack := strings.ToLower(strings.TrimSpace(track))
	cleanArtist := strings.ToLower(strings.TrimSpace(artist))
	return cleanTrack + "-" + cleanArtist
}

// Filename returns the filesystem-safe file name for a cache key,
// URL-safe base64 of the key plus the PNG extension.
func Filename(key string) string {
	return base64.URLEncoding.EncodeToString([]byte(key)) + ".png"
}
