// Package webart searches the Spotify Web API for album artwork and
// downloads the image bytes.
package webart

import "errors"

// Common errors
var (
	// ErrNotConfigured indicates no client credentials were supplied;
	// artwork search is disabled and every lookup degrades to absent.
	ErrNotConfigured = errors.New("web search not configured")

	// ErrArtworkNotFound indicates the search produced no usable result
	// (permanent failure for this key).
	ErrArtworkNotFound = errors.New("artwork not found")

	// ErrTemporaryFailure indicates a transient upstream failure.
	ErrTemporaryFailure = errors.New("temporary failure")

	// ErrRateLimited indicates the rate limit was exceeded upstream.
	ErrRateLimited = errors.New("rate limited")
)

// IsPermanentError returns true if the error indicates this key will never
// resolve and retrying is pointless.
func IsPermanentError(err error) bool {
	return errors.Is(err, ErrArtworkNotFound) || errors.Is(err, ErrNotConfigured)
}

// IsTemporaryError returns true if the error indicates a retry may succeed.
func IsTemporaryError(err error) bool {
	return errors.Is(err, ErrTemporaryFailure) || errors.Is(err, ErrRateLimited)
}

// searchResponse mirrors the subset of the Spotify track-search payload we
// consume: tracks.items[0].album.images[0].url.
type searchResponse struct {
	Tracks struct {
		Items []struct {
			Album struct {
				Images []imageRef `json:"images"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

type imageRef struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
