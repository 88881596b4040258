// Package transcode converts in-memory value graphs to canonical JSON and back
// without losing the runtime type identity of custom values.
//
// Native values (nil, bool, integers, floats, strings, []any, map[string]any,
// and the ordered *Object) are written as plain JSON. Any other runtime type is
// expanded through a registered Transcoding into a two-key tagged envelope:
//
//	{"_type_": "<tag>", "_data_": <payload>}
//
// Decoding reverses the expansion, restoring every envelope to its registered
// type. Envelopes resolve innermost first, so a transcoding may itself produce
// values of other registered types and they round-trip correctly.
//
// Traversal never recurses on the call stack: both directions walk the value
// graph with heap-allocated frames, so nesting depth is bounded only by
// available memory.
//
//	transcoder := transcode.New(transcode.UUIDAsHex())
//	data, err := transcoder.Encode(map[string]any{
//		"id":   id,
//		"tags": transcode.Tuple{"a", "b"},
//	})
//	value, err := transcoder.Decode(data)
//
// A Mapper composes a transcoder with stored-record transformations such as
// compression, and emits operational failures to ErrorSignal for central
// observation.
package transcode

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/capitan"
)

// Envelope field names. A JSON object with exactly these two keys is treated
// as the wire form of a custom value.
const (
	tagKey  = "_type_"
	dataKey = "_data_"
)

// UnregisteredTypeError is returned by Encode when a value's runtime type has
// no registered transcoding. No partial output is produced.
type UnregisteredTypeError struct {
	// Type is the offending runtime type.
	Type reflect.Type
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("transcode: type %v is not serializable, register a transcoding for it", e.Type)
}

// UnknownTagError is returned by Decode when an envelope's "_type_" tag has no
// registered transcoding.
type UnknownTagError struct {
	// Tag is the offending wire tag.
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("transcode: data serialized with tag %q is not deserializable, register a transcoding for it", e.Tag)
}

// Error signals for observability.
// Hook into ErrorSignal to receive notifications of mapper failures.
var (
	// ErrorSignal is emitted when a Mapper operation fails.
	ErrorSignal = capitan.NewSignal("transcode.error", "Transcode operational error")

	// ErrorKey extracts Error from events on ErrorSignal.
	ErrorKey = capitan.NewKey[Error]("error", "transcode.Error")
)

// Error represents an operational error in a Mapper.
type Error struct {
	// Operation is the operation that failed: "marshal" or "unmarshal".
	Operation string `json:"operation"`

	// Err is the error message.
	Err string `json:"error"`
}
