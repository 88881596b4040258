package transcode

// Object is an insertion-ordered mapping from string keys to values.
//
// JSON objects are ordered on the wire and a plain Go map loses that order.
// Object preserves it: Encode emits keys in insertion order, and Decode
// rebuilds objects in document order. Setting an existing key replaces the
// value in place without moving the key.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores value under key, appending the key if it is new.
// Returns the object for chaining.
func (o *Object) Set(key string, value any) *Object {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Tuple is a fixed-size ordered sequence, distinct from a plain []any.
//
// Tuples travel through the built-in "tuple_as_list" transcoding: they encode
// as JSON arrays but decode back to Tuple rather than []any.
type Tuple []any
