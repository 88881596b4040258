// Package compress provides byte compressors for stored records.
// Compressors pair with a transcode.Mapper via transcode.WithCompressor.
package compress

// Compressor compresses and decompresses stored-record bytes.
// Implementations must be safe for concurrent use.
type Compressor interface {
	// Name returns the stable name of the compressor, for self-describing
	// storage headers.
	Name() string

	// Compress returns the compressed form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)
}

// ByName returns a built-in compressor by its stable name.
//
// Storage formats that record the compressor name in a header can use this to
// select the matching compressor when reading existing data.
func ByName(name string) (Compressor, bool) {
	switch name {
	case "zlib":
		return Zlib{}, true
	case "zstd":
		z, err := NewZstd()
		if err != nil {
			return nil, false
		}
		return z, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}
