package artwork_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/patricknelwan/notchtify/internal/domain/artwork"
)

// testPNG encodes a small solid-color PNG for cache tests.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xFF})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDiskCache_RoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "diskcache_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cache, err := artwork.NewDiskCache(tmpDir)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	data := testPNG(t, 8, 8)
	key := artwork.Key("Song X", "Artist Y")

	cache.Put(key, &artwork.Artwork{Data: data, Width: 8, Height: 8})

	got := cache.Get(key)
	if got == nil {
		t.Fatal("Expected cache hit after Put")
	}
	if !bytes.Equal(got.Data, data) {
		t.Error("Round-tripped PNG content differs from what was written")
	}
	if got.Width != 8 || got.Height != 8 {
		t.Errorf("Expected 8x8 dimensions, got %dx%d", got.Width, got.Height)
	}
}

func TestDiskCache_MissOnUnknownKey(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "diskcache_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cache, err := artwork.NewDiskCache(tmpDir)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	if got := cache.Get(artwork.Key("never", "stored")); got != nil {
		t.Error("Expected miss for a key that was never written")
	}
}

func TestDiskCache_CorruptFileIsMiss(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "diskcache_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cache, err := artwork.NewDiskCache(tmpDir)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	key := artwork.Key("corrupt", "entry")
	path := filepath.Join(tmpDir, artwork.Filename(key))
	if err := os.WriteFile(path, []byte("not a png at all"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if got := cache.Get(key); got != nil {
		t.Error("Undecodable file should be treated as a miss")
	}

	// The next Put silently overwrites the corrupt file.
	data := testPNG(t, 4, 4)
	cache.Put(key, &artwork.Artwork{Data: data, Width: 4, Height: 4})

	if got := cache.Get(key); got == nil {
		t.Error("Expected hit after overwriting corrupt file")
	}
}

func TestDiskCache_EquivalentKeysShareFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "diskcache_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cache, err := artwork.NewDiskCache(tmpDir)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	data := testPNG(t, 4, 4)
	cache.Put(artwork.Key("Track ", "Artist"), &artwork.Artwork{Data: data, Width: 4, Height: 4})

	if got := cache.Get(artwork.Key(" TRACK", " ARTIST ")); got == nil {
		t.Error("Case/whitespace variants of the same pair should hit the same file")
	}
}
