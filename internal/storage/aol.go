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
Append-Only Log (AOL) Implementation
====================================

The AOL makes any inner Store crash-durable by write-ahead logging. It owns
F append-only files, numbered 0 .. F-1 inside one directory, and appends a
framed entry describing every mutation - synced to stable storage - before
the inner store is touched.

Entry Format:
=============

	┌───────────┬─────────┬──────────────────┬───────────────────────┐
	│ Size (8B) │ Op (1B) │ Key (2B len+data)│ Object (PUT only)     │
	└───────────┴─────────┴──────────────────┴───────────────────────┘

	- Size: big-endian count of the bytes after it (op + key + object)
	- Op:   0 = PUT, 1 = DELETE
	- Key:  length-prefixed UTF-8, as produced by object.EncodeKey
	- Object: self-delimiting codec form, present only for PUT

Files have no header, no footer, and are never truncated or rotated; they
only grow. The file owning a key is keyHash(key) mod F, so all writes for
one key serialize through the same file lock.

Write Path:
===========

 1. Serialize the entry (op, key, object)
 2. Lock the owning file
 3. Append the length-prefixed frame, then fsync
 4. Unlock, then apply the mutation to the inner store

If the append or the fsync fails, the inner store is not mutated: nothing
becomes observable that is not already persisted. The file lock and the
inner store's bucket locks are never held at the same time, so the two
layers cannot deadlock.

Crash Recovery:
===============

RecoverLog replays each file front to back. A file may end with one torn
frame - the footprint of a crash mid-append - which is silently discarded:
if fewer than 8 bytes remain, or fewer bytes than the frame length
announces, replay of that file simply stops. Damage strictly inside a
complete frame is not a torn tail and is reported: ErrObjectParse when the
key or object bytes fail the codec, ErrCorruptedEntry for structural damage
(unknown op byte, trailing bytes the codec did not consume, an undecryptable
frame).

Replay applies PUT and DELETE entries to the inner store in file order,
discarding their return values, and is idempotent: replaying the same files
twice produces the same inner state.

Encryption:
===========

When encryption is enabled, the bytes after the Size field are a sealed
AES-256-GCM message (12-byte nonce followed by ciphertext and tag) instead
of the plain entry. The frame length covers the sealed bytes, so torn-tail
detection is unchanged. With encryption disabled - the default - the file
layout is exactly the plain format above.
*/
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"crabdb/internal/object"
)

// Log entry operation codes.
const (
	opPut    byte = 0
	opDelete byte = 1
)

// frameLenSize is the width of the big-endian frame length prefix.
const frameLenSize = 8

// Errors surfaced by the AOL. Underlying I/O failures are returned as
// wrapped *os.PathError values and carry no sentinel.
var (
	// ErrDirectoryCreation is returned when the log directory does not
	// exist and cannot be created.
	ErrDirectoryCreation = errors.New("cannot create log directory")

	// ErrCorruptedEntry is returned by recovery when a complete frame is
	// structurally damaged: unknown op byte, bytes beyond what the codec
	// consumed, or a frame that fails authenticated decryption.
	ErrCorruptedEntry = errors.New("corrupted log entry")

	// ErrObjectParse is returned by recovery when a complete frame holds
	// key or object bytes the codec cannot deserialize.
	ErrObjectParse = errors.New("log entry failed deserialization")
)

// LogOptions carries optional AppendOnlyLog settings.
type LogOptions struct {
	// Encryption enables sealing of log entries at rest.
	Encryption EncryptionConfig
}

// logFile is one of the F append-only files together with the lock that
// guards its open handle.
type logFile struct {
	mu sync.Mutex
	f  *os.File
}

// AppendOnlyLog is a Store decorator that persists every mutation to one of
// F append-only log files before applying it to the inner Store. Reads
// bypass the log entirely.
//
// Thread Safety: safe for concurrent use. Writers to the same file
// serialize on that file's lock; the inner store provides its own locking.
type AppendOnlyLog struct {
	dir       string
	files     []*logFile
	inner     Store
	encryptor *Encryptor
}

// OpenLog opens an AppendOnlyLog over inner with numFiles log files in dir,
// creating the directory and any missing files. Existing file contents are
// left untouched and are NOT replayed; use RecoverLog to rebuild the inner
// store from a previous run.
func OpenLog(dir string, numFiles int, inner Store) (*AppendOnlyLog, error) {
	return OpenLogWithOptions(dir, numFiles, inner, LogOptions{})
}

// OpenLogWithOptions is OpenLog with explicit options.
func OpenLogWithOptions(dir string, numFiles int, inner Store, opts LogOptions) (*AppendOnlyLog, error) {
	if numFiles < 1 {
		return nil, fmt.Errorf("log file count must be at least 1, have %d", numFiles)
	}

	var encryptor *Encryptor
	if opts.Encryption.Enabled {
		var err error
		encryptor, err = NewEncryptor(opts.Encryption)
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryCreation, dir, err)
	}

	l := &AppendOnlyLog{
		dir:       dir,
		files:     make([]*logFile, numFiles),
		inner:     inner,
		encryptor: encryptor,
	}
	for i := range l.files {
		f, err := os.OpenFile(l.filePath(i), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("open log file %d: %w", i, err)
		}
		l.files[i] = &logFile{f: f}
	}
	return l, nil
}

// RecoverLog opens an AppendOnlyLog like OpenLog and then replays every log
// file into inner before returning. On a recovery error the log is not
// usable and its files are closed.
func RecoverLog(dir string, numFiles int, inner Store) (*AppendOnlyLog, error) {
	return RecoverLogWithOptions(dir, numFiles, inner, LogOptions{})
}

// RecoverLogWithOptions is RecoverLog with explicit options.
func RecoverLogWithOptions(dir string, numFiles int, inner Store, opts LogOptions) (*AppendOnlyLog, error) {
	l, err := OpenLogWithOptions(dir, numFiles, inner, opts)
	if err != nil {
		return nil, err
	}
	for i := range l.files {
		if err := l.replayFile(i); err != nil {
			l.Close()
			return nil, fmt.Errorf("recover log file %d: %w", i, err)
		}
	}
	return l, nil
}

// filePath returns the path of log file i. Only files named 0 .. F-1 are
// ever touched; unrelated files in the directory are ignored.
func (l *AppendOnlyLog) filePath(i int) string {
	return filepath.Join(l.dir, strconv.Itoa(i))
}

// fileFor returns the log file owning key.
func (l *AppendOnlyLog) fileFor(key string) *logFile {
	return l.files[keyHash(key)%uint64(len(l.files))]
}

// Put persists a PUT entry for (key, obj), then binds the key in the inner
// store and returns the previous object. If the log write fails, the inner
// store is left unchanged.
func (l *AppendOnlyLog) Put(key string, obj object.Object) (object.Object, error) {
	entry, err := encodeEntry(opPut, key, obj)
	if err != nil {
		return object.Null(), err
	}
	if err := l.append(key, entry); err != nil {
		return object.Null(), err
	}
	return l.inner.Put(key, obj)
}

// Get delegates to the inner store. No log I/O, no file lock.
func (l *AppendOnlyLog) Get(key string) (object.Object, error) {
	return l.inner.Get(key)
}

// Remove persists a DELETE entry for key, then unbinds it in the inner
// store and returns the removed object. The entry is written whether or not
// the key is bound; replaying a DELETE of an absent key is a no-op.
func (l *AppendOnlyLog) Remove(key string) (object.Object, error) {
	entry, err := encodeEntry(opDelete, key, object.Null())
	if err != nil {
		return object.Null(), err
	}
	if err := l.append(key, entry); err != nil {
		return object.Null(), err
	}
	return l.inner.Remove(key)
}

// encodeEntry builds the unframed entry bytes: op, encoded key, and - for
// PUT - the serialized object.
func encodeEntry(op byte, key string, obj object.Object) ([]byte, error) {
	encodedKey, err := object.EncodeKey(key)
	if err != nil {
		return nil, err
	}
	entry := make([]byte, 0, 1+len(encodedKey)+1+len(obj.Payload))
	entry = append(entry, op)
	entry = append(entry, encodedKey...)
	if op == opPut {
		entry = append(entry, object.Serialize(obj)...)
	}
	return entry, nil
}

// append frames entry and writes it, synced, to the file owning key. The
// file lock covers the append and the fsync; the inner store is never
// touched while it is held.
func (l *AppendOnlyLog) append(key string, entry []byte) error {
	if l.encryptor != nil {
		sealed, err := l.encryptor.Encrypt(entry)
		if err != nil {
			return err
		}
		entry = sealed
	}

	frame := make([]byte, frameLenSize+len(entry))
	binary.BigEndian.PutUint64(frame, uint64(len(entry)))
	copy(frame[frameLenSize:], entry)

	lf := l.fileFor(key)
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if _, err := lf.f.Write(frame); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	if err := lf.f.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	return nil
}

// replayFile reads file i in full and applies every complete entry to the
// inner store, in order. A torn tail is discarded silently.
func (l *AppendOnlyLog) replayFile(i int) error {
	lf := l.files[i]
	if _, err := lf.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}
	data, err := io.ReadAll(lf.f)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}

	off := 0
	for {
		if len(data)-off < frameLenSize {
			// Clean EOF, or a crash that did not finish the length
			// prefix. Either way there is no complete entry here.
			return nil
		}
		size := binary.BigEndian.Uint64(data[off:])
		if uint64(len(data)-off-frameLenSize) < size {
			// Torn tail: the final append did not complete.
			return nil
		}
		entry := data[off+frameLenSize : off+frameLenSize+int(size)]
		if err := l.applyEntry(entry); err != nil {
			return err
		}
		off += frameLenSize + int(size)
	}
}

// applyEntry decodes one complete entry and applies it to the inner store.
// Return values of the inner operations are discarded: replay rebuilds
// state, it does not answer callers.
func (l *AppendOnlyLog) applyEntry(entry []byte) error {
	if l.encryptor != nil {
		plain, err := l.encryptor.Decrypt(entry)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptedEntry, err)
		}
		entry = plain
	}
	if len(entry) < 1 {
		return fmt.Errorf("%w: empty frame", ErrCorruptedEntry)
	}

	op := entry[0]
	key, n, err := object.DecodeKey(entry[1:])
	if err != nil {
		return fmt.Errorf("%w: key: %v", ErrObjectParse, err)
	}
	rest := entry[1+n:]

	switch op {
	case opPut:
		obj, m, err := object.Deserialize(rest)
		if err != nil {
			return fmt.Errorf("%w: object: %v", ErrObjectParse, err)
		}
		if m != len(rest) {
			return fmt.Errorf("%w: %d bytes beyond object", ErrCorruptedEntry, len(rest)-m)
		}
		if _, err := l.inner.Put(key, obj); err != nil {
			return err
		}
	case opDelete:
		if len(rest) != 0 {
			return fmt.Errorf("%w: %d bytes after DELETE key", ErrCorruptedEntry, len(rest))
		}
		if _, err := l.inner.Remove(key); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown op %d", ErrCorruptedEntry, op)
	}
	return nil
}

// NumFiles returns the number of log files.
func (l *AppendOnlyLog) NumFiles() int {
	return len(l.files)
}

// Dir returns the directory holding the log files.
func (l *AppendOnlyLog) Dir() string {
	return l.dir
}

// Size returns the total size of all log files in bytes.
func (l *AppendOnlyLog) Size() (int64, error) {
	var total int64
	for _, lf := range l.files {
		lf.mu.Lock()
		info, err := lf.f.Stat()
		lf.mu.Unlock()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// IsEncrypted reports whether log entries are sealed at rest.
func (l *AppendOnlyLog) IsEncrypted() bool {
	return l.encryptor != nil
}

// Close closes the log file handles. Durability is per-operation, not
// per-session, so Close exists only to release descriptors deterministically
// on server shutdown.
func (l *AppendOnlyLog) Close() error {
	var firstErr error
	for _, lf := range l.files {
		if lf == nil || lf.f == nil {
			continue
		}
		if err := lf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
