package transcode

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Codec defines the serialization contract for stored payloads.
// Implement this interface to plug alternative wire formats into a Mapper.
type Codec interface {
	// Marshal serializes a value to bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a value.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for metadata propagation.
	ContentType() string
}

// EnvelopeCodec implements Codec on top of a Transcoder, so values with custom
// types round-trip through tagged envelopes.
//
// Unmarshal requires a *any target: the decoded graph is assembled by the
// transcoder, not reflected into caller structs.
type EnvelopeCodec struct {
	Transcoder *Transcoder
}

// Marshal serializes v through the transcoder.
func (c EnvelopeCodec) Marshal(v any) ([]byte, error) {
	return c.Transcoder.Encode(v)
}

// Unmarshal decodes data through the transcoder into a *any target.
func (c EnvelopeCodec) Unmarshal(data []byte, v any) error {
	target, ok := v.(*any)
	if !ok {
		return fmt.Errorf("transcode: envelope codec requires a *any target, got %T", v)
	}
	decoded, err := c.Transcoder.Decode(data)
	if err != nil {
		return err
	}
	*target = decoded
	return nil
}

// ContentType returns the JSON MIME type.
func (c EnvelopeCodec) ContentType() string {
	return "application/json"
}

// JSONCodec implements Codec using goccy/go-json. Use it for payloads with no
// custom types, where plain struct marshaling is enough.
type JSONCodec struct{}

// Marshal serializes v to JSON bytes.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal deserializes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return gojson.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// Ensure both codecs implement Codec.
var (
	_ Codec = EnvelopeCodec{}
	_ Codec = JSONCodec{}
)
