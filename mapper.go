package transcode

import (
	"context"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Internal identities for mapper pipelines.
var (
	marshalPipelineID   = pipz.NewIdentity("transcode:marshal", "Marshal stage pipeline")
	unmarshalPipelineID = pipz.NewIdentity("transcode:unmarshal", "Unmarshal stage pipeline")
	stageSequenceID     = pipz.NewIdentity("transcode:stages", "Stored-record stage chain")
)

// stage is a paired byte transformation applied after encoding and undone
// before decoding.
type stage struct {
	name      string
	marshal   func(context.Context, []byte) ([]byte, error)
	unmarshal func(context.Context, []byte) ([]byte, error)
}

// Mapper maps values to stored records and back: encode through a Codec, then
// run the bytes through an ordered chain of transformations such as
// compression or encryption. Unmarshal applies the inverse transformations in
// reverse order before decoding.
//
// Operational failures are emitted to ErrorSignal in addition to being
// returned, so storage-layer errors can be observed centrally.
type Mapper struct {
	codec     Codec
	stages    []stage
	capitan   *capitan.Capitan
	marshal   *pipz.Pipeline[[]byte]
	unmarshal *pipz.Pipeline[[]byte]
}

// NewMapper creates a Mapper around the given transcoder. With no options,
// Marshal is equivalent to transcoder.Encode and Unmarshal to
// transcoder.Decode.
func NewMapper(transcoder *Transcoder, opts ...MapperOption) *Mapper {
	m := &Mapper{codec: EnvelopeCodec{Transcoder: transcoder}}
	for _, opt := range opts {
		opt(m)
	}

	// Build pipelines: marshal applies stages in registration order,
	// unmarshal inverts them in reverse order. With no stages the codec
	// output is the stored record and no pipeline is built.
	if len(m.stages) > 0 {
		forward := make([]pipz.Chainable[[]byte], 0, len(m.stages))
		backward := make([]pipz.Chainable[[]byte], 0, len(m.stages))
		for _, s := range m.stages {
			forward = append(forward, pipz.Apply(pipz.NewIdentity(s.name, "Stored-record stage"), s.marshal))
		}
		for i := len(m.stages) - 1; i >= 0; i-- {
			s := m.stages[i]
			backward = append(backward, pipz.Apply(pipz.NewIdentity(s.name, "Stored-record stage"), s.unmarshal))
		}
		m.marshal = pipz.NewPipeline(marshalPipelineID, pipz.NewSequence(stageSequenceID, forward...))
		m.unmarshal = pipz.NewPipeline(unmarshalPipelineID, pipz.NewSequence(stageSequenceID, backward...))
	}

	return m
}

// Marshal encodes value and runs the result through the stored-record stages.
func (m *Mapper) Marshal(ctx context.Context, value any) ([]byte, error) {
	data, err := m.codec.Marshal(value)
	if err != nil {
		m.emitError(ctx, "marshal", err)
		return nil, err
	}
	if m.marshal != nil {
		if data, err = m.marshal.Process(ctx, data); err != nil {
			m.emitError(ctx, "marshal", err)
			return nil, err
		}
	}
	return data, nil
}

// Unmarshal undoes the stored-record stages and decodes the result.
func (m *Mapper) Unmarshal(ctx context.Context, data []byte) (any, error) {
	if m.unmarshal != nil {
		var err error
		if data, err = m.unmarshal.Process(ctx, data); err != nil {
			m.emitError(ctx, "unmarshal", err)
			return nil, err
		}
	}
	var value any
	if err := m.codec.Unmarshal(data, &value); err != nil {
		m.emitError(ctx, "unmarshal", err)
		return nil, err
	}
	return value, nil
}

// Close releases pipeline resources.
func (m *Mapper) Close() error {
	if m.marshal != nil {
		if err := m.marshal.Close(); err != nil {
			return err
		}
	}
	if m.unmarshal != nil {
		return m.unmarshal.Close()
	}
	return nil
}

// emitError emits an error event to ErrorSignal.
func (m *Mapper) emitError(ctx context.Context, operation string, err error) {
	e := Error{
		Operation: operation,
		Err:       err.Error(),
	}
	if m.capitan != nil {
		m.capitan.Emit(ctx, ErrorSignal, ErrorKey.Field(e))
		return
	}
	capitan.Emit(ctx, ErrorSignal, ErrorKey.Field(e))
}
