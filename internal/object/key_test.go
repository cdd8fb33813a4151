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
	"errors"
	"strings"
	"testing"
)

func TestKeyRoundTrip(t *testing.T) {
	for _, key := range []string{"", "a", "user:alice", strings.Repeat("k", 1000), "ключ"} {
		encoded, err := EncodeKey(key)
		if err != nil {
			t.Fatalf("EncodeKey(%q) failed: %v", key, err)
		}
		decoded, n, err := DecodeKey(encoded)
		if err != nil {
			t.Fatalf("DecodeKey failed: %v", err)
		}
		if n != len(encoded) {
			t.Errorf("Expected %d bytes consumed, got %d", len(encoded), n)
		}
		if decoded != key {
			t.Errorf("Expected %q, got %q", key, decoded)
		}
	}
}

func TestEncodeKeyTooLong(t *testing.T) {
	if _, err := EncodeKey(strings.Repeat("x", 1<<16)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestDecodeKeyErrors(t *testing.T) {
	if _, _, err := DecodeKey([]byte{0}); !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
	if _, _, err := DecodeKey([]byte{0, 3, 'a'}); !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
	if _, _, err := DecodeKey([]byte{0, 1, 0xff}); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}

func TestDecodeKeyDoesNotOverconsume(t *testing.T) {
	encoded, err := EncodeKey("ab")
	if err != nil {
		t.Fatalf("EncodeKey failed: %v", err)
	}
	key, n, err := DecodeKey(append(encoded, 'z'))
	if err != nil {
		t.Fatalf("DecodeKey failed: %v", err)
	}
	if key != "ab" || n != 4 {
		t.Errorf("Expected ('ab', 4), got (%q, %d)", key, n)
	}
}
