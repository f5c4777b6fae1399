package artwork

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Provider resolves artwork for a (track, artist) pair with tiered fallback:
//  1. Memory cache (instant, no I/O)
//  2. Disk cache
//  3. Web fetcher
//
// Concurrent resolutions for the same key are collapsed into a single fetch;
// every waiter receives the same result. Successful fetches populate disk
// then memory, so population is idempotent and harmless even if no caller is
// still interested by the time it completes.
type Provider struct {
	mem     *MemoryCache
	disk    *DiskCache
	fetcher Fetcher
	group   singleflight.Group
}

// NewProvider creates an artwork provider. fetcher may be nil, in which case
// resolution degrades to the caches alone.
func NewProvider(mem *MemoryCache, disk *DiskCache, fetcher Fetcher) *Provider {
	return &Provider{
		mem:     mem,
		disk:    disk,
		fetcher: fetcher,
	}
}

// Resolve returns artwork for the pair, or ErrNoArtwork (or a fetch error)
// when it cannot be obtained. Waiting is bounded by ctx, but an in-flight
// fetch keeps running to completion so its result still lands in the caches.
func (p *Provider) Resolve(ctx context.Context, track, artist string) (*Artwork, error) {
	key := Key(track, artist)

	if art, ok := p.mem.Get(key); ok {
		log.Debug().Str("key", key).Msg("Memory cache hit")
		return art, nil
	}

	ch := p.group.DoChan(key, func() (interface{}, error) {
		return p.fetch(key, track, artist)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Artwork), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch runs at most once per key at a time, on behalf of every concurrent
// caller. It deliberately uses a background context: stopping one caller
// must not abort work other waiters share, and a completed fetch is still
// valid cache content.
func (p *Provider) fetch(key, track, artist string) (*Artwork, error) {
	if art := p.disk.Get(key); art != nil {
		p.mem.Put(key, art)
		return art, nil
	}

	if p.fetcher == nil {
		return nil, ErrNoArtwork
	}

	data, err := p.fetcher.FetchAlbumArt(context.Background(), track, artist)
	if err != nil {
		return nil, err
	}

	art, err := Decode(data)
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("Fetched artwork undecodable")
		return nil, ErrNoArtwork
	}

	p.disk.Put(key, art)
	p.mem.Put(key, art)

	log.Debug().
		Str("key", key).
		Int("width", art.Width).
		Int("height", art.Height).
		Msg("Resolved artwork from web")

	return art, nil
}
