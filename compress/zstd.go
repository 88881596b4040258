package compress

import "github.com/klauspost/compress/zstd"

// Zstd compresses with the zstandard format. The encoder and decoder are
// created once and reused; EncodeAll and DecodeAll are safe for concurrent
// use.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd creates a Zstd compressor with default options.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

// Name returns "zstd".
func (z *Zstd) Name() string { return "zstd" }

// Compress encodes data as a zstd frame.
func (z *Zstd) Compress(data []byte) ([]byte, error) {
	return z.enc.EncodeAll(data, nil), nil
}

// Decompress decodes a zstd frame.
func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	return z.dec.DecodeAll(data, nil)
}

var _ Compressor = (*Zstd)(nil)
