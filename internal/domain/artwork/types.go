// Package artwork provides album artwork resolution through a tiered cache
// (memory, disk) backed by a web search fetcher.
package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// ErrNoArtwork is returned when no artwork could be resolved for a track.
var ErrNoArtwork = errors.New("no artwork found")

// Artwork is a resolved album image. Data is always PNG-encoded.
type Artwork struct {
	Data   []byte
	Width  int
	Height int
}

// Cost estimates the in-memory footprint of the decoded image,
// width * height * 4 bytes (uncompressed RGBA).
func (a *Artwork) Cost() int64 {
	return int64(a.Width) * int64(a.Height) * 4
}

// Fetcher fetches raw album art bytes from an external source.
type Fetcher interface {
	FetchAlbumArt(ctx context.Context, track, artist string) ([]byte, error)
}

// Decode decodes image bytes in any supported format and re-encodes as PNG.
func Decode(data []byte) (*Artwork, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	bounds := img.Bounds()
	return &Artwork{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
