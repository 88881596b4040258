package transcode

import "reflect"

// registry holds the two lookup tables for transcodings: by runtime type for
// encoding and by wire tag for decoding.
//
// Registration is last-write-wins on both keys. When a new transcoding
// displaces an old one on either key, the old transcoding's other mapping is
// removed as well, so the two tables always describe the same set of
// transcodings. The registry is populated before use and read-only during
// Encode/Decode calls; registering while calls are in flight must be
// serialized externally.
type registry struct {
	byType map[reflect.Type]Transcoding
	byName map[string]Transcoding
}

func newRegistry() *registry {
	return &registry{
		byType: make(map[reflect.Type]Transcoding),
		byName: make(map[string]Transcoding),
	}
}

func (r *registry) register(tr Transcoding) {
	if old, ok := r.byType[tr.Type()]; ok && old.Name() != tr.Name() {
		delete(r.byName, old.Name())
	}
	if old, ok := r.byName[tr.Name()]; ok && old.Type() != tr.Type() {
		delete(r.byType, old.Type())
	}
	r.byType[tr.Type()] = tr
	r.byName[tr.Name()] = tr
}

func (r *registry) lookupByType(t reflect.Type) (Transcoding, bool) {
	tr, ok := r.byType[t]
	return tr, ok
}

func (r *registry) lookupByName(name string) (Transcoding, bool) {
	tr, ok := r.byName[name]
	return tr, ok
}
