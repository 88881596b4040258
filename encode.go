package transcode

import (
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Envelope framing, built from the key constants so the two sides can never
// drift apart.
const (
	envelopeOpen = `{"` + tagKey + `":`
	envelopeData = `,"` + dataKey + `":`
)

// encodeFrame is the traversal state for one in-progress composite node.
// Frames form a singly linked stack on the heap, so nesting depth is bounded
// by memory rather than by the goroutine stack.
type encodeFrame struct {
	parent *encodeFrame

	// keys is the object key snapshot; nil for arrays.
	keys []string

	// values is the child snapshot, captured at frame creation so a
	// transcoding that mutates a composite mid-encode cannot corrupt the
	// traversal.
	values []any

	next   int
	object bool

	// closers is the number of closing braces owed to envelopes that wrap
	// this composite.
	closers int
}

// Encode serializes value to its canonical JSON encoding.
//
// Native leaves and the []any / map[string]any / *Object composites are
// written directly; any other runtime type is expanded through its registered
// transcoding into a tagged envelope. *Object keys are emitted in insertion
// order; map[string]any keys are emitted sorted, so output is deterministic
// either way. An unregistered type aborts with *UnregisteredTypeError and no
// partial output.
func (t *Transcoder) Encode(value any) ([]byte, error) {
	buf := make([]byte, 0, 128)
	buf, top, err := t.appendValue(buf, value, nil)
	if err != nil {
		return nil, err
	}

frames:
	for top != nil {
		f := top
		for f.next < len(f.values) {
			if f.next > 0 {
				buf = append(buf, ',')
			}
			if f.object {
				buf = appendString(buf, f.keys[f.next])
				buf = append(buf, ':')
			}
			child := f.values[f.next]
			f.next++

			var active *encodeFrame
			buf, active, err = t.appendValue(buf, child, f)
			if err != nil {
				return nil, err
			}
			if active != f {
				// The child is a composite; work on it until it
				// completes, then resume this frame.
				top = active
				continue frames
			}
		}
		if f.object {
			buf = append(buf, '}')
		} else {
			buf = append(buf, ']')
		}
		for i := 0; i < f.closers; i++ {
			buf = append(buf, '}')
		}
		top = f.parent
	}
	return buf, nil
}

// appendValue emits a single value. Leaves are appended in place and the
// parent frame is returned unchanged; composites open a new frame and return
// it. Custom values unwrap iteratively: each envelope prefix is emitted and
// the transcoding's payload takes the value's place, with the owed closing
// braces tracked in closers.
func (t *Transcoder) appendValue(buf []byte, value any, parent *encodeFrame) ([]byte, *encodeFrame, error) {
	closers := 0
	for {
		switch v := value.(type) {
		case nil:
			buf = append(buf, "null"...)
		case bool:
			if v {
				buf = append(buf, "true"...)
			} else {
				buf = append(buf, "false"...)
			}
		case string:
			buf = appendString(buf, v)
		case int:
			buf = strconv.AppendInt(buf, int64(v), 10)
		case int8:
			buf = strconv.AppendInt(buf, int64(v), 10)
		case int16:
			buf = strconv.AppendInt(buf, int64(v), 10)
		case int32:
			buf = strconv.AppendInt(buf, int64(v), 10)
		case int64:
			buf = strconv.AppendInt(buf, v, 10)
		case uint:
			buf = strconv.AppendUint(buf, uint64(v), 10)
		case uint8:
			buf = strconv.AppendUint(buf, uint64(v), 10)
		case uint16:
			buf = strconv.AppendUint(buf, uint64(v), 10)
		case uint32:
			buf = strconv.AppendUint(buf, uint64(v), 10)
		case uint64:
			buf = strconv.AppendUint(buf, v, 10)
		case float32:
			buf = appendFloat(buf, float64(v), 32)
		case float64:
			buf = appendFloat(buf, v, 64)
		case []any:
			if len(v) == 0 {
				buf = append(buf, '[', ']')
				break
			}
			buf = append(buf, '[')
			return buf, &encodeFrame{parent: parent, values: v, closers: closers}, nil
		case *Object:
			if v == nil {
				buf = append(buf, "null"...)
				break
			}
			if v.Len() == 0 {
				buf = append(buf, '{', '}')
				break
			}
			keys := v.Keys()
			values := make([]any, len(keys))
			for i, k := range keys {
				values[i] = v.values[k]
			}
			buf = append(buf, '{')
			return buf, &encodeFrame{parent: parent, keys: keys, values: values, object: true, closers: closers}, nil
		case map[string]any:
			if len(v) == 0 {
				buf = append(buf, '{', '}')
				break
			}
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			values := make([]any, len(keys))
			for i, k := range keys {
				values[i] = v[k]
			}
			buf = append(buf, '{')
			return buf, &encodeFrame{parent: parent, keys: keys, values: values, object: true, closers: closers}, nil
		default:
			rt := reflect.TypeOf(value)
			tr, ok := t.registry.lookupByType(rt)
			if !ok {
				return nil, nil, &UnregisteredTypeError{Type: rt}
			}
			buf = append(buf, envelopeOpen...)
			buf = appendString(buf, tr.Name())
			buf = append(buf, envelopeData...)
			payload, err := tr.Encode(value)
			if err != nil {
				return nil, nil, err
			}
			closers++
			value = payload
			continue
		}

		for i := 0; i < closers; i++ {
			buf = append(buf, '}')
		}
		return buf, parent, nil
	}
}

const hexDigits = "0123456789abcdef"

// appendString writes s as a quoted JSON string. Valid UTF-8 passes through
// unescaped; only quotes, backslashes, and control characters are escaped.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf = append(buf, s[start:i]...)
		switch c {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		default:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		start = i + 1
	}
	buf = append(buf, s[start:]...)
	return append(buf, '"')
}

// appendFloat writes f in its shortest decimal form. Whole values keep a
// trailing ".0" so they re-decode as floats rather than integers. NaN and the
// infinities have no JSON representation and encode as null.
func appendFloat(buf []byte, f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, f, format, -1, bits)
	if format == 'e' {
		// Trim a leading zero from two-digit exponents: e-09 -> e-9.
		if n := len(buf); n >= 4 && buf[n-4] == 'e' && buf[n-3] == '-' && buf[n-2] == '0' {
			buf[n-2] = buf[n-1]
			buf = buf[:n-1]
		}
		return buf
	}
	for _, c := range buf[start:] {
		if c == '.' {
			return buf
		}
	}
	return append(buf, '.', '0')
}
