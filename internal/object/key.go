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

package object

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// maxKeyLen is the largest encodable key or text, bounded by the 16-bit
// length prefix.
const maxKeyLen = 1<<16 - 1

// EncodeKey serializes a key: a 2-byte big-endian length followed by the
// UTF-8 bytes. Keys compare by byte equality; the empty key is legal.
func EncodeKey(key string) ([]byte, error) {
	if len(key) > maxKeyLen {
		return nil, fmt.Errorf("key of %d bytes: %w", len(key), ErrTooLarge)
	}
	if !utf8.ValidString(key) {
		return nil, ErrInvalidUTF8
	}
	buf := make([]byte, lenSize+len(key))
	binary.BigEndian.PutUint16(buf, uint16(len(key)))
	copy(buf[lenSize:], key)
	return buf, nil
}

// DecodeKey decodes a key from the front of b and returns it together with
// the number of bytes consumed.
func DecodeKey(b []byte) (string, int, error) {
	if len(b) < lenSize {
		return "", 0, ErrTruncated
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < lenSize+n {
		return "", 0, ErrTruncated
	}
	raw := b[lenSize : lenSize+n]
	if !utf8.Valid(raw) {
		return "", 0, ErrInvalidUTF8
	}
	return string(raw), lenSize + n, nil
}
