package transcode

// Transcoder composes a registry of transcodings with the encoder and decoder
// into the two public operations Encode and Decode.
//
// A Transcoder is safe for concurrent Encode/Decode calls once registration is
// complete. Register is not synchronized against in-flight calls.
type Transcoder struct {
	registry *registry
}

// New creates a Transcoder with the built-in tuple transcoding installed,
// followed by any additional transcodings given.
func New(transcodings ...Transcoding) *Transcoder {
	t := &Transcoder{registry: newRegistry()}
	t.Register(TupleAsList())
	for _, tr := range transcodings {
		t.Register(tr)
	}
	return t
}

// Register installs a transcoding for its runtime type and wire tag. A later
// registration for the same type or tag overwrites the earlier one. Register
// every custom type before encoding or decoding values of that type.
func (t *Transcoder) Register(tr Transcoding) {
	t.registry.register(tr)
}
