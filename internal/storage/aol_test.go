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
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"crabdb/internal/object"
)

func setupTestLog(t *testing.T, numFiles int) (*AppendOnlyLog, string, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dir := filepath.Join(tmpDir, "log")
	l, err := OpenLog(dir, numFiles, NewShardedMap(4))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to open log: %v", err)
	}

	cleanup := func() {
		l.Close()
		os.RemoveAll(tmpDir)
	}
	return l, dir, cleanup
}

// readFrames parses the raw frames of one log file, ignoring a torn tail.
func readFrames(t *testing.T, path string) [][]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	var frames [][]byte
	off := 0
	for len(data)-off >= frameLenSize {
		size := binary.BigEndian.Uint64(data[off:])
		if uint64(len(data)-off-frameLenSize) < size {
			break
		}
		frames = append(frames, data[off+frameLenSize:off+frameLenSize+int(size)])
		off += frameLenSize + int(size)
	}
	return frames
}

func mustPut(t *testing.T, s Store, key string, obj object.Object) object.Object {
	t.Helper()
	prev, err := s.Put(key, obj)
	if err != nil {
		t.Fatalf("Put(%q) failed: %v", key, err)
	}
	return prev
}

func mustGet(t *testing.T, s Store, key string) object.Object {
	t.Helper()
	obj, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return obj
}

func TestAppendOnlyLogContract(t *testing.T) {
	l, _, cleanup := setupTestLog(t, 2)
	defer cleanup()
	storeContractTest(t, l)
}

func TestAppendOnlyLogInvalidFileCount(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := OpenLog(filepath.Join(tmpDir, "log"), 0, NewShardedMap(1)); err == nil {
		t.Error("Expected error for zero log files")
	}
}

func TestAppendOnlyLogCreatesFiles(t *testing.T) {
	l, dir, cleanup := setupTestLog(t, 3)
	defer cleanup()

	if l.NumFiles() != 3 {
		t.Errorf("Expected 3 files, got %d", l.NumFiles())
	}
	for i := 0; i < 3; i++ {
		info, err := os.Stat(filepath.Join(dir, fmt.Sprintf("%d", i)))
		if err != nil {
			t.Fatalf("Log file %d missing: %v", i, err)
		}
		if info.Size() != 0 {
			t.Errorf("Fresh log file %d should be empty, has %d bytes", i, info.Size())
		}
	}
}

// TestAppendOnlyLogBasicSession covers the first end-to-end scenario: a
// fresh log, a handful of mutations with their return values, then a
// recovery into a fresh inner store that reproduces the same state.
func TestAppendOnlyLogBasicSession(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "t1")

	l, err := OpenLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}

	textX, err := object.NewText("x")
	if err != nil {
		t.Fatalf("NewText failed: %v", err)
	}

	if prev := mustPut(t, l, "a", object.NewInt(1)); !prev.IsNull() {
		t.Error("put a=1: expected Null")
	}
	if prev := mustPut(t, l, "b", textX); !prev.IsNull() {
		t.Error("put b=x: expected Null")
	}
	if prev := mustPut(t, l, "a", object.NewInt(2)); !prev.Equal(object.NewInt(1)) {
		t.Error("put a=2: expected Int(1)")
	}
	removed, err := l.Remove("b")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed.Equal(textX) {
		t.Error("remove b: expected Text(x)")
	}
	if got := mustGet(t, l, "a"); !got.Equal(object.NewInt(2)) {
		t.Error("get a: expected Int(2)")
	}
	if got := mustGet(t, l, "b"); !got.IsNull() {
		t.Error("get b: expected Null")
	}
	l.Close()

	// Reopen with recovery: the same state must come back.
	recovered, err := RecoverLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Failed to recover log: %v", err)
	}
	defer recovered.Close()

	if got := mustGet(t, recovered, "a"); !got.Equal(object.NewInt(2)) {
		t.Error("after recovery, get a: expected Int(2)")
	}
	if got := mustGet(t, recovered, "b"); !got.IsNull() {
		t.Error("after recovery, get b: expected Null")
	}
}

func TestAppendOnlyLogRecoveryMatchesInMemory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLog(dir, 4, NewShardedMap(8))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}

	// Apply the same operation sequence to the log and to a plain
	// in-memory store; recovery must reproduce the in-memory result.
	reference := NewShardedMap(8)
	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("key-%d", i%50)
		var obj object.Object
		switch i % 3 {
		case 0:
			obj = object.NewInt(int64(i))
		case 1:
			obj, err = object.NewText(fmt.Sprintf("value-%d", i))
			if err != nil {
				t.Fatalf("NewText failed: %v", err)
			}
		case 2:
			obj = object.Null()
		}
		if i%7 == 6 {
			if _, err := l.Remove(key); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if _, err := reference.Remove(key); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			continue
		}
		mustPut(t, l, key, obj)
		mustPut(t, reference, key, obj)
	}
	l.Close()

	recovered, err := RecoverLog(dir, 4, NewShardedMap(8))
	if err != nil {
		t.Fatalf("Failed to recover log: %v", err)
	}
	defer recovered.Close()

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		want := mustGet(t, reference, key)
		got := mustGet(t, recovered, key)
		if !got.Equal(want) {
			t.Errorf("%s: recovered %s, want %s", key, got.Kind, want.Kind)
		}
	}
}

func TestAppendOnlyLogRecoveryIsIdempotent(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	for i := 0; i < 20; i++ {
		mustPut(t, l, fmt.Sprintf("k%d", i), object.NewInt(int64(i)))
	}
	if _, err := l.Remove("k3"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	l.Close()

	// Recover the same on-disk state twice into separate inner stores.
	first, err := RecoverLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("First recovery failed: %v", err)
	}
	first.Close()
	second, err := RecoverLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Second recovery failed: %v", err)
	}
	defer second.Close()

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("k%d", i)
		a := mustGet(t, first, key)
		b := mustGet(t, second, key)
		if !a.Equal(b) {
			t.Errorf("%s: recoveries disagree", key)
		}
	}
}

// TestAppendOnlyLogTornTail simulates a crash mid-append by truncating the
// single log file one byte short. Recovery must keep every complete entry
// and silently discard the torn one.
func TestAppendOnlyLogTornTail(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	// One file keeps the on-disk entry order deterministic.
	l, err := OpenLog(dir, 1, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	mustPut(t, l, "a", object.NewInt(1))
	mustPut(t, l, "b", object.NewInt(2))
	mustPut(t, l, "a", object.NewInt(3))
	l.Close()

	path := filepath.Join(dir, "0")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if err := os.Truncate(path, info.Size()-1); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	recovered, err := RecoverLog(dir, 1, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Recovery after torn tail failed: %v", err)
	}
	defer recovered.Close()

	// The torn entry (a=3) is gone; everything before it survives.
	if got := mustGet(t, recovered, "a"); !got.Equal(object.NewInt(1)) {
		t.Error("Expected a=Int(1) after losing the torn entry")
	}
	if got := mustGet(t, recovered, "b"); !got.Equal(object.NewInt(2)) {
		t.Error("Expected b=Int(2) to survive")
	}
}

func TestAppendOnlyLogTornTailAtEveryOffset(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLog(dir, 1, NewShardedMap(1))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	mustPut(t, l, "k1", object.NewInt(10))
	mustPut(t, l, "k2", object.NewInt(20))
	l.Close()

	path := filepath.Join(dir, "0")
	full, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Truncating at any byte offset must recover the longest prefix of
	// complete entries, never an error and never a partial entry.
	firstEntryEnd := frameLenSize + int(binary.BigEndian.Uint64(full))
	for cut := 0; cut < len(full); cut++ {
		if err := os.WriteFile(path, full[:cut], 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		recovered, err := RecoverLog(dir, 1, NewShardedMap(1))
		if err != nil {
			t.Fatalf("cut=%d: recovery failed: %v", cut, err)
		}

		wantK1 := cut >= firstEntryEnd
		got := mustGet(t, recovered, "k1")
		if wantK1 && !got.Equal(object.NewInt(10)) {
			t.Errorf("cut=%d: expected k1 present", cut)
		}
		if !wantK1 && !got.IsNull() {
			t.Errorf("cut=%d: expected k1 absent", cut)
		}
		if got := mustGet(t, recovered, "k2"); !got.IsNull() {
			t.Errorf("cut=%d: expected k2 absent", cut)
		}
		recovered.Close()
	}
}

func TestAppendOnlyLogCorruptedEntry(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	frame := func(entry []byte) []byte {
		buf := make([]byte, frameLenSize+len(entry))
		binary.BigEndian.PutUint64(buf, uint64(len(entry)))
		copy(buf[frameLenSize:], entry)
		return buf
	}
	key := []byte{0, 1, 'k'}

	tests := []struct {
		name  string
		entry []byte
		want  error
	}{
		{"unknown op", append([]byte{7}, key...), ErrCorruptedEntry},
		{"empty frame", []byte{}, ErrCorruptedEntry},
		{"bad key utf8", []byte{0, 0, 1, 0xff}, ErrObjectParse},
		{"bad object kind", append(append([]byte{0}, key...), 9), ErrObjectParse},
		{"truncated object inside frame", append(append([]byte{0}, key...), 1, 0, 0), ErrObjectParse},
		{"trailing bytes after object", append(append([]byte{0}, key...), 0, 0xAA), ErrCorruptedEntry},
		{"trailing bytes after delete key", append(append([]byte{1}, key...), 0xAA), ErrCorruptedEntry},
	}
	for _, tt := range tests {
		if err := os.WriteFile(filepath.Join(dir, "0"), frame(tt.entry), 0644); err != nil {
			t.Fatalf("%s: WriteFile failed: %v", tt.name, err)
		}
		_, err := RecoverLog(dir, 1, NewShardedMap(1))
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

// TestAppendOnlyLogDeleteIsAlwaysLogged pins the policy for removes of
// absent keys: a DELETE entry is appended regardless, and replaying it is a
// no-op.
func TestAppendOnlyLogDeleteIsAlwaysLogged(t *testing.T) {
	l, dir, cleanup := setupTestLog(t, 1)
	defer cleanup()

	removed, err := l.Remove("ghost")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed.IsNull() {
		t.Error("Remove of absent key should return Null")
	}

	frames := readFrames(t, filepath.Join(dir, "0"))
	if len(frames) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(frames))
	}
	if frames[0][0] != opDelete {
		t.Errorf("Expected DELETE op, got %d", frames[0][0])
	}
}

// TestAppendOnlyLogStoredNull verifies that storing Null is a real PUT at
// the log level even though the Store-level returns cannot tell it from
// absence.
func TestAppendOnlyLogStoredNull(t *testing.T) {
	l, dir, cleanup := setupTestLog(t, 1)
	defer cleanup()

	list, err := object.NewList(object.NewInt(1), object.NewInt(2))
	if err != nil {
		t.Fatalf("NewList failed: %v", err)
	}

	if prev := mustPut(t, l, "k", list); !prev.IsNull() {
		t.Error("put k=list: expected Null")
	}
	if prev := mustPut(t, l, "k", object.Null()); !prev.Equal(list) {
		t.Error("put k=Null: expected the list back")
	}
	if got := mustGet(t, l, "k"); !got.IsNull() {
		t.Error("get k: expected Null")
	}

	// The log must contain two PUT entries - the stored Null is not
	// elided.
	frames := readFrames(t, filepath.Join(dir, "0"))
	if len(frames) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(frames))
	}
	for i, f := range frames {
		if f[0] != opPut {
			t.Errorf("Entry %d: expected PUT op, got %d", i, f[0])
		}
	}
}

// TestAppendOnlyLogConcurrentPuts runs concurrent writers on disjoint keys
// and checks both the recovered state and the exact byte accounting of the
// log files: sizes must sum to the framed length of every entry written.
func TestAppendOnlyLogConcurrentPuts(t *testing.T) {
	const goroutines = 8
	const puts = 500

	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLog(dir, 4, NewShardedMap(8))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}

	var wg sync.WaitGroup
	var expectedBytes int64
	var mu sync.Mutex
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			var bytes int64
			for i := 0; i < puts; i++ {
				key := fmt.Sprintf("g%d-key-%d", g, i)
				if _, err := l.Put(key, object.NewInt(int64(i))); err != nil {
					t.Errorf("Put(%q) failed: %v", key, err)
					return
				}
				// frame length + op + encoded key + kind byte + payload
				bytes += frameLenSize + 1 + int64(2+len(key)) + 1 + 8
			}
			mu.Lock()
			expectedBytes += bytes
			mu.Unlock()
		}(g)
	}
	wg.Wait()

	size, err := l.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != expectedBytes {
		t.Errorf("Expected log files to total %d bytes, got %d", expectedBytes, size)
	}
	l.Close()

	recovered, err := RecoverLog(dir, 4, NewShardedMap(8))
	if err != nil {
		t.Fatalf("Recovery failed: %v", err)
	}
	defer recovered.Close()
	for g := 0; g < goroutines; g++ {
		for i := 0; i < puts; i++ {
			got := mustGet(t, recovered, fmt.Sprintf("g%d-key-%d", g, i))
			if v, _ := got.IntValue(); v != int64(i) {
				t.Fatalf("g%d-key-%d: expected %d, got %d", g, i, i, v)
			}
		}
	}
}

func TestAppendOnlyLogIgnoresUnknownFiles(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	mustPut(t, l, "k", object.NewInt(1))
	l.Close()

	// A stray file in the directory is not a log file and must not be
	// parsed.
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("not a log"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	recovered, err := RecoverLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Recovery failed: %v", err)
	}
	defer recovered.Close()
	if got := mustGet(t, recovered, "k"); !got.Equal(object.NewInt(1)) {
		t.Error("Expected k=Int(1) after recovery")
	}
}

func TestAppendOnlyLogWriteAfterRecovery(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	mustPut(t, l, "old", object.NewInt(1))
	l.Close()

	l, err = RecoverLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Recovery failed: %v", err)
	}
	mustPut(t, l, "new", object.NewInt(2))
	l.Close()

	final, err := RecoverLog(dir, 2, NewShardedMap(4))
	if err != nil {
		t.Fatalf("Second recovery failed: %v", err)
	}
	defer final.Close()
	if got := mustGet(t, final, "old"); !got.Equal(object.NewInt(1)) {
		t.Error("Expected old=Int(1)")
	}
	if got := mustGet(t, final, "new"); !got.Equal(object.NewInt(2)) {
		t.Error("Expected new=Int(2)")
	}
}

func TestEncryptedLogRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_enc_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	opts := LogOptions{Encryption: EncryptionConfig{
		Enabled:    true,
		Passphrase: "test-passphrase",
	}}

	l, err := OpenLogWithOptions(dir, 2, NewShardedMap(4), opts)
	if err != nil {
		t.Fatalf("Failed to open encrypted log: %v", err)
	}
	if !l.IsEncrypted() {
		t.Fatal("Expected log to be encrypted")
	}
	mustPut(t, l, "secret", object.NewInt(42))
	l.Close()

	recovered, err := RecoverLogWithOptions(dir, 2, NewShardedMap(4), opts)
	if err != nil {
		t.Fatalf("Recovery failed: %v", err)
	}
	defer recovered.Close()
	if got := mustGet(t, recovered, "secret"); !got.Equal(object.NewInt(42)) {
		t.Error("Expected secret=Int(42) after encrypted recovery")
	}
}

func TestEncryptedLogWrongPassphrase(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "crabdb_aol_enc_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "log")

	l, err := OpenLogWithOptions(dir, 1, NewShardedMap(1), LogOptions{
		Encryption: EncryptionConfig{Enabled: true, Passphrase: "right"},
	})
	if err != nil {
		t.Fatalf("Failed to open encrypted log: %v", err)
	}
	mustPut(t, l, "k", object.NewInt(1))
	l.Close()

	_, err = RecoverLogWithOptions(dir, 1, NewShardedMap(1), LogOptions{
		Encryption: EncryptionConfig{Enabled: true, Passphrase: "wrong"},
	})
	if !errors.Is(err, ErrCorruptedEntry) {
		t.Errorf("Expected ErrCorruptedEntry with wrong passphrase, got %v", err)
	}
}

func TestEncryptorRejectsShortKey(t *testing.T) {
	_, err := NewEncryptor(EncryptionConfig{Enabled: true, Key: []byte("short")})
	if !errors.Is(err, ErrInvalidEncryptionKey) {
		t.Errorf("Expected ErrInvalidEncryptionKey, got %v", err)
	}
}

func TestEncryptorRoundTrip(t *testing.T) {
	e, err := NewEncryptor(EncryptionConfig{Enabled: true, Passphrase: "pw"})
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}
	sealed, err := e.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plain, err := e.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(plain) != "payload" {
		t.Errorf("Expected 'payload', got %q", plain)
	}

	// Flipping one ciphertext bit must fail authentication.
	sealed[len(sealed)-1] ^= 1
	if _, err := e.Decrypt(sealed); err == nil {
		t.Error("Expected authentication failure on tampered entry")
	}
}
