package compress

import (
	"bytes"
	"strings"
	"testing"
)

func compressors(t *testing.T) []Compressor {
	t.Helper()

	zstd, err := NewZstd()
	if err != nil {
		t.Fatalf("NewZstd failed: %v", err)
	}
	return []Compressor{Zlib{}, zstd, LZ4{}}
}

func TestCompressor_RoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"originator_id":"b2723fe2","originator_version":123}`, 50))

	for _, c := range compressors(t) {
		t.Run(c.Name(), func(t *testing.T) {
			compressed, err := c.Compress(payload)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if len(compressed) >= len(payload) {
				t.Errorf("expected %d bytes to shrink, got %d", len(payload), len(compressed))
			}

			restored, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(restored, payload) {
				t.Error("round trip corrupted the payload")
			}
		})
	}
}

func TestCompressor_EmptyInput(t *testing.T) {
	for _, c := range compressors(t) {
		t.Run(c.Name(), func(t *testing.T) {
			compressed, err := c.Compress(nil)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			restored, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if len(restored) != 0 {
				t.Errorf("expected empty payload, got %d bytes", len(restored))
			}
		})
	}
}

func TestCompressor_DecompressGarbage(t *testing.T) {
	for _, c := range compressors(t) {
		t.Run(c.Name(), func(t *testing.T) {
			if _, err := c.Decompress([]byte("not a compressed stream")); err == nil {
				t.Error("expected garbage input to fail")
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"zlib", "zstd", "lz4"} {
		c, ok := ByName(name)
		if !ok {
			t.Errorf("expected %q to resolve", name)
			continue
		}
		if c.Name() != name {
			t.Errorf("expected name %q, got %q", name, c.Name())
		}
	}
	if _, ok := ByName("gzip"); ok {
		t.Error("expected unknown name to miss")
	}
}
