package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Zlib compresses with the zlib format at the default level.
type Zlib struct{}

// Name returns "zlib".
func (Zlib) Name() string { return "zlib" }

// Compress deflates data into a zlib stream.
func (Zlib) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream.
func (Zlib) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

var _ Compressor = Zlib{}
