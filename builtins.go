package transcode

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// TupleAsList encodes a Tuple as a plain JSON array under the "tuple_as_list"
// tag, so fixed-size ordered tuples survive a round trip distinct from
// arrays. It is installed automatically by New.
func TupleAsList() Transcoding {
	return NewTranscoding("tuple_as_list",
		func(t Tuple) (any, error) {
			list := make([]any, len(t))
			copy(list, t)
			return list, nil
		},
		func(data any) (Tuple, error) {
			list, ok := data.([]any)
			if !ok {
				return nil, fmt.Errorf("transcode: tuple_as_list: expected array, got %T", data)
			}
			t := make(Tuple, len(list))
			copy(t, list)
			return t, nil
		})
}

// UUIDAsHex encodes a uuid.UUID as its 32-character lowercase hex form under
// the "uuid_hex" tag.
func UUIDAsHex() Transcoding {
	return NewTranscoding("uuid_hex",
		func(id uuid.UUID) (any, error) {
			return hex.EncodeToString(id[:]), nil
		},
		func(data any) (uuid.UUID, error) {
			s, ok := data.(string)
			if !ok {
				return uuid.Nil, fmt.Errorf("transcode: uuid_hex: expected string, got %T", data)
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return uuid.Nil, fmt.Errorf("transcode: uuid_hex: %w", err)
			}
			return id, nil
		})
}

// TimeAsISO encodes a time.Time as an RFC 3339 timestamp with nanosecond
// precision under the "datetime_iso" tag.
func TimeAsISO() Transcoding {
	return NewTranscoding("datetime_iso",
		func(t time.Time) (any, error) {
			return t.Format(time.RFC3339Nano), nil
		},
		func(data any) (time.Time, error) {
			s, ok := data.(string)
			if !ok {
				return time.Time{}, fmt.Errorf("transcode: datetime_iso: expected string, got %T", data)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return time.Time{}, fmt.Errorf("transcode: datetime_iso: %w", err)
			}
			return t, nil
		})
}

// DecimalAsStr encodes an *apd.Decimal as its exact decimal string under the
// "decimal_str" tag.
func DecimalAsStr() Transcoding {
	return NewTranscoding("decimal_str",
		func(d *apd.Decimal) (any, error) {
			return d.String(), nil
		},
		func(data any) (*apd.Decimal, error) {
			s, ok := data.(string)
			if !ok {
				return nil, fmt.Errorf("transcode: decimal_str: expected string, got %T", data)
			}
			d, _, err := apd.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("transcode: decimal_str: %w", err)
			}
			return d, nil
		})
}
