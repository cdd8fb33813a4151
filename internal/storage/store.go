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
Package storage provides the keyed object store at the heart of CrabDB.

Store Abstraction:
==================

The Store interface has exactly three operations - Put, Get, Remove - and
two composable implementations:

	┌───────────────────────────────────────────────────┐
	│                 AppendOnlyLog                     │
	│   (decorator: persists mutations to F log files   │
	│    before applying them to the inner Store)       │
	└───────────────────────────────────────────────────┘
	                        │
	                        ▼
	┌───────────────────────────────────────────────────┐
	│                  ShardedMap                       │
	│   (in-memory: S independently locked buckets)     │
	└───────────────────────────────────────────────────┘

Absence is a value, not an error: every operation returns the previous
object bound to the key, or the Null Object when there was none. Errors
are reserved for real failures - log I/O on the write path, corruption
during recovery - which the in-memory implementation never produces.

Durability Model:
=================

 1. Every Put/Remove is framed and appended to one of F log files
 2. The file is fsynced before the in-memory store is touched
 3. On startup, the log files are replayed to rebuild the in-memory state

A mutation that is observable in memory is therefore always backed by a
complete, synced log entry.
*/
package storage

import (
	"hash/fnv"

	"crabdb/internal/object"
)

// Store is the three-operation keyed mapping abstraction shared by all
// backends.
//
// All implementations are safe for concurrent use. Absence is encoded as
// the Null Object: Get on an unbound key returns Null, and Put/Remove
// return the previous binding or Null. Storing Null is legal and is a real
// binding at the log level, even though it is indistinguishable from
// absence in the return values.
type Store interface {
	// Put binds key to obj and returns the previous object for the key,
	// or Null if there was none.
	Put(key string, obj object.Object) (object.Object, error)

	// Get returns the object bound to key, or Null if there is none.
	Get(key string) (object.Object, error)

	// Remove unbinds key and returns the removed object, or Null if the
	// key was not bound.
	Remove(key string) (object.Object, error)
}

// keyHash is the hash family used for bucket and log-file selection:
// FNV-1a over the key bytes. It is deterministic for the lifetime of a
// process, which is all that is required - nothing on disk is keyed by a
// hash value, so cross-process stability does not matter.
func keyHash(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}
