package webart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	// DefaultAPIBaseURL is the Spotify Web API base URL.
	DefaultAPIBaseURL = "https://api.spotify.com/v1"

	// DefaultTokenURL is the client-credentials token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit for search requests, requests per second.
	DefaultRateLimit = 5

	// MaxImageSize is the maximum image size to download (10MB).
	MaxImageSize = 10 * 1024 * 1024
)

// Client searches for album artwork on the Spotify Web API. Authentication
// uses the client-credentials grant; the oauth2 token source caches the
// bearer token process-wide and single-flights refreshes, so concurrent
// searches never race two token exchanges.
type Client struct {
	baseURL  string
	tokenURL string
	limiter  *rate.Limiter
	api      *http.Client // attaches bearer tokens
	download *http.Client // plain client for the image CDN
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTokenURL sets a custom token endpoint (useful for testing).
func WithTokenURL(u string) Option {
	return func(c *Client) {
		c.tokenURL = u
	}
}

// WithRateLimit sets the search rate limit in requests per second.
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithDownloadClient sets a custom HTTP client for image downloads.
func WithDownloadClient(client *http.Client) Option {
	return func(c *Client) {
		c.download = client
	}
}

// NewClient creates a search client. Empty credentials yield a disabled
// client whose lookups fail fast with ErrNotConfigured.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultAPIBaseURL,
		tokenURL: DefaultTokenURL,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		download: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if clientID == "" || clientSecret == "" {
		log.Warn().Msg("No web API credentials configured, artwork search disabled")
		return c
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.tokenURL,
	}

	// The token exchange and refreshes go through this base client.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient,
		&http.Client{Timeout: DefaultTimeout})
	c.api = conf.Client(ctx)
	c.api.Timeout = DefaultTimeout

	return c
}

// Enabled reports whether credentials were configured.
func (c *Client) Enabled() bool {
	return c.api != nil
}

// FetchAlbumArt searches for the track and downloads the first album image
// of the top result. The search and the image download are two independent
// round trips; a download failure is reported as temporary rather than as
// "not found".
func (c *Client) FetchAlbumArt(ctx context.Context, track, artist string) ([]byte, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}

	imageURL, err := c.searchImageURL(ctx, track, artist)
	if err != nil {
		return nil, err
	}

	data, err := c.downloadImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("track", track).
		Str("artist", artist).
		Int("size", len(data)).
		Msg("Fetched album art from web API")

	return data, nil
}

// searchImageURL queries the track-search endpoint and extracts the first
// image URL of the top result's album.
func (c *Client) searchImageURL(ctx context.Context, track, artist string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	query := url.QueryEscape(track + " artist:" + artist)
	searchURL := fmt.Sprintf("%s/search?q=%s&type=track&limit=1", c.baseURL, query)

	log.Debug().
		Str("track", track).
		Str("artist", artist).
		Msg("Searching web API for album art")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.api.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success
	case http.StatusTooManyRequests:
		log.Warn().Str("track", track).Msg("Web API rate limit exceeded")
		return "", ErrRateLimited
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		log.Warn().Int("status", resp.StatusCode).Msg("Web API temporary error")
		return "", ErrTemporaryFailure
	default:
		return "", fmt.Errorf("unexpected search status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(search.Tracks.Items) == 0 {
		log.Debug().Str("track", track).Str("artist", artist).Msg("No search results")
		return "", ErrArtworkNotFound
	}
	images := search.Tracks.Items[0].Album.Images
	if len(images) == 0 || images[0].URL == "" {
		log.Debug().Str("track", track).Str("artist", artist).Msg("Top result has no album images")
		return "", ErrArtworkNotFound
	}

	return images[0].URL, nil
}

// downloadImage fetches the raw image bytes with a size cap.
func (c *Client) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("url", imageURL).Msg("Image download failed")
		return nil, fmt.Errorf("image download status %d: %w", resp.StatusCode, ErrTemporaryFailure)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image body: %w", ErrTemporaryFailure)
	}

	return data, nil
}
