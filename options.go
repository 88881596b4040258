package transcode

import (
	"context"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/transcode/compress"
)

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithCodec sets a custom codec for the mapper.
// If not specified, an EnvelopeCodec over the mapper's transcoder is used.
func WithCodec(c Codec) MapperOption {
	return func(m *Mapper) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithCompressor appends a compression stage. Marshal compresses after
// encoding (and any earlier stages); Unmarshal decompresses in the mirrored
// position before decoding.
func WithCompressor(c compress.Compressor) MapperOption {
	return func(m *Mapper) {
		m.stages = append(m.stages, stage{
			name: "transcode:compress:" + c.Name(),
			marshal: func(_ context.Context, data []byte) ([]byte, error) {
				return c.Compress(data)
			},
			unmarshal: func(_ context.Context, data []byte) ([]byte, error) {
				return c.Decompress(data)
			},
		})
	}
}

// WithStage appends a custom byte-transform stage, such as encryption. The
// marshal function runs after encoding and any earlier stages; the unmarshal
// function must be its exact inverse and runs in the mirrored position.
func WithStage(name string, marshal, unmarshal func(context.Context, []byte) ([]byte, error)) MapperOption {
	return func(m *Mapper) {
		m.stages = append(m.stages, stage{name: name, marshal: marshal, unmarshal: unmarshal})
	}
}

// WithMapperCapitan sets a custom Capitan instance for error events.
func WithMapperCapitan(c *capitan.Capitan) MapperOption {
	return func(m *Mapper) {
		m.capitan = c
	}
}
