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
)

// ListBuilder incrementally constructs a List object. The zero value is an
// empty builder.
type ListBuilder struct {
	count int
	data  []byte
}

// Append adds one element to the list being built.
func (b *ListBuilder) Append(o Object) error {
	if b.count >= maxKeyLen {
		return fmt.Errorf("list of %d elements: %w", b.count+1, ErrTooLarge)
	}
	if b.data == nil {
		b.data = make([]byte, lenSize)
	}
	b.data = append(b.data, Serialize(o)...)
	b.count++
	return nil
}

// Build finalizes the list. The builder must not be reused afterwards.
func (b *ListBuilder) Build() Object {
	if b.data == nil {
		b.data = make([]byte, lenSize)
	}
	binary.BigEndian.PutUint16(b.data, uint16(b.count))
	return Object{Kind: KindList, Payload: b.data}
}

// NewList builds a List object from the given elements.
func NewList(items ...Object) (Object, error) {
	var b ListBuilder
	for _, item := range items {
		if err := b.Append(item); err != nil {
			return Object{}, err
		}
	}
	return b.Build(), nil
}

// MapBuilder incrementally constructs a Map object. Field order is
// preserved; duplicate names are not rejected, matching the wire format,
// which is a plain sequence of fields.
type MapBuilder struct {
	count int
	data  []byte
}

// AddField adds one name/value pair to the map being built. Field names
// follow the same constraints as keys.
func (b *MapBuilder) AddField(name string, value Object) error {
	if b.count >= maxKeyLen {
		return fmt.Errorf("map of %d fields: %w", b.count+1, ErrTooLarge)
	}
	encoded, err := EncodeKey(name)
	if err != nil {
		return err
	}
	if b.data == nil {
		b.data = make([]byte, lenSize)
	}
	b.data = append(b.data, encoded...)
	b.data = append(b.data, Serialize(value)...)
	b.count++
	return nil
}

// Build finalizes the map. The builder must not be reused afterwards.
func (b *MapBuilder) Build() Object {
	if b.data == nil {
		b.data = make([]byte, lenSize)
	}
	binary.BigEndian.PutUint16(b.data, uint16(b.count))
	return Object{Kind: KindMap, Payload: b.data}
}
