/*
 * Copyright (c) 2026 CrabDB Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package object defines the tagged value model stored in CrabDB and its
binary codec.

Object Model:
=============

Every value in the database is an Object: a one-byte kind tag followed by
an opaque payload. The closed set of kinds is:

	Null (0)  - the distinguished "absent" sentinel, also a storable value
	Int  (1)  - signed 64-bit integer
	Text (2)  - UTF-8 string
	List (3)  - ordered sequence of Objects
	Map  (4)  - ordered field-name -> Object mapping
	Link (5)  - reference to another key in the store

Wire Format:
============

All multi-byte integers are big-endian. Serialized objects are
self-delimiting: Deserialize consumes exactly one object and reports how
many bytes it read, which is what allows the append-only log and the wire
protocol to embed objects without an outer length field.

	Null: (empty payload)
	Int:  8 bytes, two's complement
	Text: | 2 bytes length | n bytes UTF-8 |
	List: | 2 bytes count  | count serialized objects |
	Map:  | 2 bytes count  | count * (2 bytes name length | name | object) |
	Link: same layout as a Key

The payload of a composite object is stored in serialized form. Accessors
like Items and Fields decode on demand; builders in builder.go construct
composite payloads incrementally.
*/
package object

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind identifies the type of an Object. It is the first byte of every
// serialized object.
type Kind byte

// The closed set of object kinds.
const (
	KindNull Kind = 0
	KindInt  Kind = 1
	KindText Kind = 2
	KindList Kind = 3
	KindMap  Kind = 4
	KindLink Kind = 5
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindText:
		return "Text"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindLink:
		return "Link"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// Codec errors. Callers typically check these with errors.Is.
var (
	// ErrUnknownKind is returned when a kind byte is outside the closed set.
	ErrUnknownKind = errors.New("unknown object kind")

	// ErrTruncated is returned when the input ends before a complete
	// object could be decoded.
	ErrTruncated = errors.New("truncated object data")

	// ErrInvalidUTF8 is returned when text or a field name is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 data")

	// ErrWrongKind is returned by an accessor applied to an object of a
	// different kind, e.g. IntValue on a Text.
	ErrWrongKind = errors.New("wrong object kind")

	// ErrTooLarge is returned when a text, list, map, or field name exceeds
	// its 16-bit length or count field.
	ErrTooLarge = errors.New("object component exceeds 16-bit limit")
)

// lenSize is the width of every length and count field in the payload
// formats: text length, list count, map field count, field name length.
const lenSize = 2

// intSize is the payload width of an Int object.
const intSize = 8

// Object is a single database value: a kind tag and the serialized payload
// for that kind. The zero value is the Null Object.
//
// Objects are immutable; the payload slice must not be modified after
// construction.
type Object struct {
	Kind    Kind
	Payload []byte
}

// Null returns the Null Object, the sentinel meaning "absent" at the Store
// level. Null is also a first-class storable value.
func Null() Object {
	return Object{Kind: KindNull}
}

// NewInt creates an Int object.
func NewInt(v int64) Object {
	payload := make([]byte, intSize)
	binary.BigEndian.PutUint64(payload, uint64(v))
	return Object{Kind: KindInt, Payload: payload}
}

// NewText creates a Text object. The string must be valid UTF-8 and shorter
// than 64 KiB.
func NewText(s string) (Object, error) {
	if len(s) > maxKeyLen {
		return Object{}, fmt.Errorf("text of %d bytes: %w", len(s), ErrTooLarge)
	}
	if !utf8.ValidString(s) {
		return Object{}, ErrInvalidUTF8
	}
	payload := make([]byte, lenSize+len(s))
	binary.BigEndian.PutUint16(payload, uint16(len(s)))
	copy(payload[lenSize:], s)
	return Object{Kind: KindText, Payload: payload}, nil
}

// NewLink creates a Link object referencing another key. The key must
// satisfy the same constraints as a stored key.
func NewLink(key string) (Object, error) {
	payload, err := EncodeKey(key)
	if err != nil {
		return Object{}, err
	}
	return Object{Kind: KindLink, Payload: payload}, nil
}

// IsNull reports whether the object is the Null Object.
func (o Object) IsNull() bool {
	return o.Kind == KindNull
}

// Equal reports whether two objects have the same kind and payload bytes.
func (o Object) Equal(other Object) bool {
	return o.Kind == other.Kind && bytes.Equal(o.Payload, other.Payload)
}

// IntValue returns the value of an Int object.
func (o Object) IntValue() (int64, error) {
	if o.Kind != KindInt {
		return 0, fmt.Errorf("%w: have %s, want Int", ErrWrongKind, o.Kind)
	}
	if len(o.Payload) != intSize {
		return 0, ErrTruncated
	}
	return int64(binary.BigEndian.Uint64(o.Payload)), nil
}

// TextValue returns the value of a Text object.
func (o Object) TextValue() (string, error) {
	if o.Kind != KindText {
		return "", fmt.Errorf("%w: have %s, want Text", ErrWrongKind, o.Kind)
	}
	if len(o.Payload) < lenSize {
		return "", ErrTruncated
	}
	n := int(binary.BigEndian.Uint16(o.Payload))
	if len(o.Payload) < lenSize+n {
		return "", ErrTruncated
	}
	return string(o.Payload[lenSize : lenSize+n]), nil
}

// LinkKey returns the key a Link object refers to.
func (o Object) LinkKey() (string, error) {
	if o.Kind != KindLink {
		return "", fmt.Errorf("%w: have %s, want Link", ErrWrongKind, o.Kind)
	}
	key, _, err := DecodeKey(o.Payload)
	return key, err
}

// Items decodes the elements of a List object.
func (o Object) Items() ([]Object, error) {
	if o.Kind != KindList {
		return nil, fmt.Errorf("%w: have %s, want List", ErrWrongKind, o.Kind)
	}
	if len(o.Payload) < lenSize {
		return nil, ErrTruncated
	}
	count := int(binary.BigEndian.Uint16(o.Payload))
	items := make([]Object, 0, count)
	rest := o.Payload[lenSize:]
	for i := 0; i < count; i++ {
		item, n, err := Deserialize(rest)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		rest = rest[n:]
	}
	return items, nil
}

// Field is one name/value pair of a Map object.
type Field struct {
	Name  string
	Value Object
}

// Fields decodes the fields of a Map object in their stored order.
func (o Object) Fields() ([]Field, error) {
	if o.Kind != KindMap {
		return nil, fmt.Errorf("%w: have %s, want Map", ErrWrongKind, o.Kind)
	}
	if len(o.Payload) < lenSize {
		return nil, ErrTruncated
	}
	count := int(binary.BigEndian.Uint16(o.Payload))
	fields := make([]Field, 0, count)
	rest := o.Payload[lenSize:]
	for i := 0; i < count; i++ {
		name, n, err := DecodeKey(rest)
		if err != nil {
			return nil, err
		}
		rest = rest[n:]
		value, n, err := Deserialize(rest)
		if err != nil {
			return nil, err
		}
		rest = rest[n:]
		fields = append(fields, Field{Name: name, Value: value})
	}
	return fields, nil
}

// Serialize converts an object into its wire form: the kind byte followed
// by the payload.
func Serialize(o Object) []byte {
	buf := make([]byte, 1+len(o.Payload))
	buf[0] = byte(o.Kind)
	copy(buf[1:], o.Payload)
	return buf
}

// Deserialize decodes exactly one object from the front of b and returns it
// together with the number of bytes consumed. The payload is copied, so the
// returned object does not alias b.
//
// The whole object is validated, including nested structure and UTF-8 in
// texts and field names. This is what makes the codec self-delimiting: the
// consumed count is exact, with no reliance on an outer length.
func Deserialize(b []byte) (Object, int, error) {
	if len(b) < 1 {
		return Object{}, 0, ErrTruncated
	}
	kind := Kind(b[0])
	n, err := payloadLen(kind, b[1:])
	if err != nil {
		return Object{}, 0, err
	}
	payload := make([]byte, n)
	copy(payload, b[1:1+n])
	return Object{Kind: kind, Payload: payload}, 1 + n, nil
}

// payloadLen validates the payload of the given kind at the front of b and
// returns its length in bytes.
func payloadLen(kind Kind, b []byte) (int, error) {
	switch kind {
	case KindNull:
		return 0, nil

	case KindInt:
		if len(b) < intSize {
			return 0, ErrTruncated
		}
		return intSize, nil

	case KindText:
		return textLen(b)

	case KindLink:
		_, n, err := DecodeKey(b)
		return n, err

	case KindList:
		if len(b) < lenSize {
			return 0, ErrTruncated
		}
		count := int(binary.BigEndian.Uint16(b))
		off := lenSize
		for i := 0; i < count; i++ {
			if len(b) < off+1 {
				return 0, ErrTruncated
			}
			n, err := payloadLen(Kind(b[off]), b[off+1:])
			if err != nil {
				return 0, err
			}
			off += 1 + n
		}
		return off, nil

	case KindMap:
		if len(b) < lenSize {
			return 0, ErrTruncated
		}
		count := int(binary.BigEndian.Uint16(b))
		off := lenSize
		for i := 0; i < count; i++ {
			_, n, err := DecodeKey(b[off:])
			if err != nil {
				return 0, err
			}
			off += n
			if len(b) < off+1 {
				return 0, ErrTruncated
			}
			n, err = payloadLen(Kind(b[off]), b[off+1:])
			if err != nil {
				return 0, err
			}
			off += 1 + n
		}
		return off, nil

	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, byte(kind))
	}
}

// textLen validates a text payload (length prefix, bounds, UTF-8) and
// returns its total length.
func textLen(b []byte) (int, error) {
	if len(b) < lenSize {
		return 0, ErrTruncated
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < lenSize+n {
		return 0, ErrTruncated
	}
	if !utf8.Valid(b[lenSize : lenSize+n]) {
		return 0, ErrInvalidUTF8
	}
	return lenSize + n, nil
}
