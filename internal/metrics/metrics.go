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

// Package metrics collects operation counters for the server. Counters are
// plain atomics; Snapshot gives a consistent-enough view for logging and
// the shutdown report.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds the server's counters.
type Metrics struct {
	startTime time.Time

	gets     atomic.Int64
	sets     atomic.Int64
	deletes  atomic.Int64
	errors   atomic.Int64
	sessions atomic.Int64
	active   atomic.Int64
}

// New creates a Metrics with the uptime clock started.
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordGet counts one GET.
func (m *Metrics) RecordGet() { m.gets.Add(1) }

// RecordSet counts one SET.
func (m *Metrics) RecordSet() { m.sets.Add(1) }

// RecordDelete counts one DELETE.
func (m *Metrics) RecordDelete() { m.deletes.Add(1) }

// RecordError counts one failed request.
func (m *Metrics) RecordError() { m.errors.Add(1) }

// SessionStarted counts a new connection.
func (m *Metrics) SessionStarted() {
	m.sessions.Add(1)
	m.active.Add(1)
}

// SessionEnded marks a connection as closed.
func (m *Metrics) SessionEnded() { m.active.Add(-1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Gets           int64
	Sets           int64
	Deletes        int64
	Errors         int64
	Sessions       int64
	ActiveSessions int64
	Uptime         time.Duration
}

// Snapshot reads all counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Gets:           m.gets.Load(),
		Sets:           m.sets.Load(),
		Deletes:        m.deletes.Load(),
		Errors:         m.errors.Load(),
		Sessions:       m.sessions.Load(),
		ActiveSessions: m.active.Load(),
		Uptime:         time.Since(m.startTime),
	}
}
