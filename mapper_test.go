package transcode

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/transcode/compress"
)

func TestMapper_Default(t *testing.T) {
	m := NewMapper(New())
	defer m.Close()

	value := NewObject().Set("a", int64(1)).Set("tags", Tuple{"x"})
	data, err := m.Marshal(context.Background(), value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := m.Unmarshal(context.Background(), data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("expected %#v, got %#v", value, got)
	}
}

func TestMapper_WithCompressor(t *testing.T) {
	tc := New()
	m := NewMapper(tc, WithCompressor(compress.Zlib{}))
	defer m.Close()

	// Repetitive payload so compression visibly changes the bytes.
	arr := make([]any, 200)
	for i := range arr {
		arr[i] = "the same string again"
	}

	plain, err := tc.Encode(arr)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data, err := m.Marshal(context.Background(), arr)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if bytes.Equal(data, plain) {
		t.Error("expected compressed record to differ from plain encoding")
	}
	if len(data) >= len(plain) {
		t.Errorf("expected compression to shrink %d bytes, got %d", len(plain), len(data))
	}

	got, err := m.Unmarshal(context.Background(), data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, arr) {
		t.Error("round trip through compressor lost data")
	}
}

// markerStage appends a single marker byte on marshal and verifies and strips
// it on unmarshal, making stage ordering observable.
func markerStage(marker byte) MapperOption {
	return WithStage("test:marker:"+string(marker),
		func(_ context.Context, data []byte) ([]byte, error) {
			return append(data, marker), nil
		},
		func(_ context.Context, data []byte) ([]byte, error) {
			if len(data) == 0 || data[len(data)-1] != marker {
				return nil, errors.New("stage order violated")
			}
			return data[:len(data)-1], nil
		})
}

func TestMapper_StageOrderIsMirrored(t *testing.T) {
	m := NewMapper(New(), markerStage('A'), markerStage('B'))
	defer m.Close()

	data, err := m.Marshal(context.Background(), int64(1))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("AB")) {
		t.Errorf("expected marshal stages to run in order, got %q", data)
	}

	got, err := m.Unmarshal(context.Background(), data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != int64(1) {
		t.Errorf("expected 1, got %#v", got)
	}
}

func TestMapper_WithJSONCodec(t *testing.T) {
	m := NewMapper(nil, WithCodec(JSONCodec{}))
	defer m.Close()

	data, err := m.Marshal(context.Background(), map[string]any{"name": "fido"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := m.Unmarshal(context.Background(), data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	obj, ok := got.(map[string]any)
	if !ok || obj["name"] != "fido" {
		t.Errorf("unexpected payload: %#v", got)
	}
}

func TestMapper_EmitsErrorSignal(t *testing.T) {
	c := capitan.New()
	defer c.Shutdown()

	var mu sync.Mutex
	var captured []Error
	c.Observe(func(_ context.Context, e *capitan.Event) {
		if errEvent, ok := ErrorKey.From(e); ok {
			mu.Lock()
			captured = append(captured, errEvent)
			mu.Unlock()
		}
	}, ErrorSignal)

	m := NewMapper(New(), WithMapperCapitan(c))
	defer m.Close()

	type unregistered struct{}
	if _, err := m.Marshal(context.Background(), unregistered{}); err == nil {
		t.Fatal("expected marshal of unregistered type to fail")
	}

	c.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	if len(captured) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(captured))
	}
	if captured[0].Operation != "marshal" {
		t.Errorf("expected operation %q, got %q", "marshal", captured[0].Operation)
	}
}
