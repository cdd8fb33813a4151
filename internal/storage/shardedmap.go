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

package storage

import (
	"sync"

	"crabdb/internal/object"
)

// DefaultBuckets is the bucket count used by NewShardedMap when the caller
// does not choose one.
const DefaultBuckets = 4

// ShardedMap is the in-memory Store implementation: a fixed array of
// buckets, each an ordinary map guarded by its own RWMutex. The bucket for
// a key is keyHash(key) mod the bucket count, so operations on different
// buckets never contend and readers of the same bucket do not block each
// other.
//
// The bucket count is the concurrency dial. One bucket degenerates to a
// single global lock, which is legal.
type ShardedMap struct {
	buckets []bucket
}

// bucket is one independently locked partition of the map.
type bucket struct {
	mu sync.RWMutex
	m  map[string]object.Object
}

// NewShardedMap creates a ShardedMap with the given number of buckets.
// Counts below one are raised to DefaultBuckets.
func NewShardedMap(buckets int) *ShardedMap {
	if buckets < 1 {
		buckets = DefaultBuckets
	}
	s := &ShardedMap{buckets: make([]bucket, buckets)}
	for i := range s.buckets {
		s.buckets[i].m = make(map[string]object.Object)
	}
	return s
}

// bucketFor returns the bucket owning key.
func (s *ShardedMap) bucketFor(key string) *bucket {
	return &s.buckets[keyHash(key)%uint64(len(s.buckets))]
}

// Put binds key to obj and returns the previous binding, or Null.
// It never fails.
func (s *ShardedMap) Put(key string, obj object.Object) (object.Object, error) {
	b := s.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, ok := b.m[key]
	b.m[key] = obj
	if !ok {
		return object.Null(), nil
	}
	return prev, nil
}

// Get returns the object bound to key, or Null. It never fails.
func (s *ShardedMap) Get(key string) (object.Object, error) {
	b := s.bucketFor(key)
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.m[key]
	if !ok {
		return object.Null(), nil
	}
	return obj, nil
}

// Remove unbinds key and returns the removed object, or Null. It never
// fails.
func (s *ShardedMap) Remove(key string) (object.Object, error) {
	b := s.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, ok := b.m[key]
	if !ok {
		return object.Null(), nil
	}
	delete(b.m, key)
	return prev, nil
}

// Len returns the total number of bindings across all buckets. It is a
// diagnostic helper used by tests and the server's shutdown report.
func (s *ShardedMap) Len() int {
	total := 0
	for i := range s.buckets {
		b := &s.buckets[i]
		b.mu.RLock()
		total += len(b.m)
		b.mu.RUnlock()
	}
	return total
}
