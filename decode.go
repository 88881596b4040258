package transcode

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Decode parses data and restores every envelope back into its custom value.
//
// Parsing builds a generic tree of leaves, arrays, and ordered objects; a
// discovery pass then linearizes all composite nodes, and a reverse pass
// resolves envelopes innermost first, so nested custom values are fully
// restored before their containers decode. Integers decode as int64 and
// floating-point numbers as float64. An envelope tag with no registered
// transcoding aborts with *UnknownTagError.
func (t *Transcoder) Decode(data []byte) (any, error) {
	root, err := parse(data)
	if err != nil {
		return nil, err
	}
	return t.resolve(root)
}

// decodeFrame links a discovered composite node back to its slot in the
// parent, so a resolved envelope can be written over the raw object it
// replaces.
type decodeFrame struct {
	node   any
	parent any
	key    string
	index  int
}

// resolve walks the parsed tree. Discovery runs in document order; resolution
// runs in reverse discovery order, which guarantees that by the time an
// envelope decodes, every envelope inside its payload has already been
// replaced by its final value.
func (t *Transcoder) resolve(root any) (any, error) {
	var frames []decodeFrame
	if isComposite(root) {
		frames = append(frames, decodeFrame{node: root})
	}
	for i := 0; i < len(frames); i++ {
		switch node := frames[i].node.(type) {
		case []any:
			for j, child := range node {
				if isComposite(child) {
					frames = append(frames, decodeFrame{node: child, parent: node, index: j})
				}
			}
		case *Object:
			for _, k := range node.keys {
				if child := node.values[k]; isComposite(child) {
					frames = append(frames, decodeFrame{node: child, parent: node, key: k})
				}
			}
		}
	}

	result := root
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		obj, ok := f.node.(*Object)
		if !ok || !isEnvelope(obj) {
			continue
		}

		tag, _ := obj.Get(tagKey)
		name, ok := tag.(string)
		if !ok {
			return nil, &UnknownTagError{Tag: fmt.Sprint(tag)}
		}
		tr, ok := t.registry.lookupByName(name)
		if !ok {
			return nil, &UnknownTagError{Tag: name}
		}
		payload, _ := obj.Get(dataKey)
		restored, err := tr.Decode(payload)
		if err != nil {
			return nil, err
		}

		switch parent := f.parent.(type) {
		case nil:
			result = restored
		case []any:
			parent[f.index] = restored
		case *Object:
			parent.Set(f.key, restored)
		}
	}
	return result, nil
}

func isComposite(v any) bool {
	switch v.(type) {
	case []any, *Object:
		return true
	}
	return false
}

// isEnvelope reports whether o has exactly the two envelope keys. Objects that
// merely resemble envelopes (missing one key, or carrying extras) are left as
// plain data.
func isEnvelope(o *Object) bool {
	if o.Len() != 2 {
		return false
	}
	_, hasTag := o.values[tagKey]
	_, hasData := o.values[dataKey]
	return hasTag && hasData
}

// parser is a self-contained JSON lexer. It keeps container state in an
// explicit slice rather than recursing, so input nesting depth is bounded only
// by memory.
type parser struct {
	data []byte
	pos  int
}

// parseFrame is one in-progress container during parsing. Exactly one of arr
// and obj is active.
type parseFrame struct {
	arr []any
	obj *Object
	key string
}

func parse(data []byte) (any, error) {
	p := &parser{data: data}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.data) {
		return nil, p.errorf("trailing data")
	}
	return v, nil
}

func (p *parser) parseValue() (any, error) {
	var stack []*parseFrame

	for {
		p.skipSpace()
		c, err := p.peek()
		if err != nil {
			return nil, err
		}

		var v any
		switch c {
		case '{':
			p.pos++
			p.skipSpace()
			if b, _ := p.peek(); b == '}' {
				p.pos++
				v = NewObject()
				break
			}
			f := &parseFrame{obj: NewObject()}
			if err := p.readKey(f); err != nil {
				return nil, err
			}
			stack = append(stack, f)
			continue
		case '[':
			p.pos++
			p.skipSpace()
			if b, _ := p.peek(); b == ']' {
				p.pos++
				v = []any{}
				break
			}
			stack = append(stack, &parseFrame{arr: []any{}})
			continue
		case '"':
			if v, err = p.readString(); err != nil {
				return nil, err
			}
		case 't':
			if err := p.literal("true"); err != nil {
				return nil, err
			}
			v = true
		case 'f':
			if err := p.literal("false"); err != nil {
				return nil, err
			}
			v = false
		case 'n':
			if err := p.literal("null"); err != nil {
				return nil, err
			}
		default:
			if v, err = p.readNumber(); err != nil {
				return nil, err
			}
		}

		// Place the value into the innermost container, closing
		// containers as they complete.
		for {
			if len(stack) == 0 {
				return v, nil
			}
			top := stack[len(stack)-1]
			if top.obj != nil {
				top.obj.Set(top.key, v)
			} else {
				top.arr = append(top.arr, v)
			}

			p.skipSpace()
			c, err := p.next()
			if err != nil {
				return nil, err
			}
			if c == ',' {
				if top.obj != nil {
					if err := p.readKey(top); err != nil {
						return nil, err
					}
				}
				break
			}
			switch {
			case top.obj != nil && c == '}':
				v = top.obj
			case top.obj == nil && c == ']':
				v = top.arr
			default:
				return nil, p.errorf("unexpected character %q", c)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

// readKey reads a `"key":` pair header into the frame.
func (p *parser) readKey(f *parseFrame) error {
	p.skipSpace()
	c, err := p.peek()
	if err != nil {
		return err
	}
	if c != '"' {
		return p.errorf("expected object key")
	}
	key, err := p.readString()
	if err != nil {
		return err
	}
	f.key = key
	p.skipSpace()
	if c, err = p.next(); err != nil {
		return err
	}
	if c != ':' {
		return p.errorf("expected ':' after object key")
	}
	return nil
}

// readString consumes a quoted string starting at the opening quote.
func (p *parser) readString() (string, error) {
	p.pos++ // opening quote

	// Fast path: no escapes or control characters.
	for i := p.pos; i < len(p.data); i++ {
		c := p.data[i]
		if c == '"' {
			s := string(p.data[p.pos:i])
			p.pos = i + 1
			return s, nil
		}
		if c == '\\' || c < 0x20 {
			break
		}
	}

	var sb []byte
	i := p.pos
	for i < len(p.data) {
		switch c := p.data[i]; {
		case c == '"':
			p.pos = i + 1
			return string(sb), nil
		case c == '\\':
			i++
			if i >= len(p.data) {
				return "", p.errorf("unterminated string")
			}
			switch p.data[i] {
			case '"':
				sb = append(sb, '"')
			case '\\':
				sb = append(sb, '\\')
			case '/':
				sb = append(sb, '/')
			case 'n':
				sb = append(sb, '\n')
			case 'r':
				sb = append(sb, '\r')
			case 't':
				sb = append(sb, '\t')
			case 'b':
				sb = append(sb, '\b')
			case 'f':
				sb = append(sb, '\f')
			case 'u':
				r, n, err := p.readEscapedRune(i - 1)
				if err != nil {
					return "", err
				}
				sb = utf8.AppendRune(sb, r)
				i += n - 2 // the leading `\u` is consumed below
			default:
				return "", p.errorf("invalid escape character %q", p.data[i])
			}
			i++
		case c < 0x20:
			return "", p.errorf("invalid control character in string")
		default:
			sb = append(sb, c)
			i++
		}
	}
	return "", p.errorf("unterminated string")
}

// readEscapedRune decodes a \uXXXX escape starting at offset start, pairing
// surrogate halves when a second escape follows. It returns the rune and the
// total byte length of the escape sequence(s).
func (p *parser) readEscapedRune(start int) (rune, int, error) {
	r1, ok := hex4(p.data, start+2)
	if !ok {
		return 0, 0, p.errorf("invalid unicode escape")
	}
	if !utf16.IsSurrogate(r1) {
		return r1, 6, nil
	}
	if start+12 <= len(p.data) && p.data[start+6] == '\\' && p.data[start+7] == 'u' {
		if r2, ok := hex4(p.data, start+8); ok {
			if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
				return r, 12, nil
			}
		}
	}
	// Unpaired surrogate: replacement character, same as the standard
	// library decoder.
	return utf8.RuneError, 6, nil
}

func hex4(data []byte, at int) (rune, bool) {
	if at+4 > len(data) {
		return 0, false
	}
	var r rune
	for _, c := range data[at : at+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}

// readNumber consumes a JSON number. Numbers without a fraction or exponent
// decode as int64; everything else, and integers beyond int64 range, decode as
// float64.
func (p *parser) readNumber() (any, error) {
	start := p.pos
	if c, _ := p.peek(); c == '-' {
		p.pos++
	}
	if p.digits() == 0 {
		return nil, p.errorf("invalid number")
	}
	isFloat := false
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		isFloat = true
		p.pos++
		if p.digits() == 0 {
			return nil, p.errorf("invalid number")
		}
	}
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.digits() == 0 {
			return nil, p.errorf("invalid number")
		}
	}

	text := string(p.data[start:p.pos])
	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		// Out of int64 range; fall through to float64.
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return f, nil
}

func (p *parser) digits() int {
	n := 0
	for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
		n++
	}
	return n
}

func (p *parser) literal(lit string) error {
	if len(p.data)-p.pos < len(lit) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return p.errorf("invalid literal")
	}
	p.pos += len(lit)
	return nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, p.errorf("unexpected end of input")
	}
	return p.data[p.pos], nil
}

func (p *parser) next() (byte, error) {
	c, err := p.peek()
	if err != nil {
		return 0, err
	}
	p.pos++
	return c, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("transcode: parse error at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}
