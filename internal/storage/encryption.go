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
Log encryption at rest.

Each log entry is sealed independently with AES-256-GCM: a fresh random
12-byte nonce is prepended to the ciphertext, and the GCM tag authenticates
the entry, so a tampered or wrongly-keyed frame fails loudly on recovery
instead of replaying garbage into the store.

The 32-byte key is either supplied directly (external key management) or
derived from a passphrase with PBKDF2-SHA256.
*/
package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// EncryptionConfig controls sealing of log entries at rest.
type EncryptionConfig struct {
	// Enabled turns encryption on. When false the other fields are ignored.
	Enabled bool

	// Key is the 32-byte AES-256 key. Takes precedence over Passphrase.
	Key []byte

	// Passphrase derives the key via PBKDF2-SHA256 when Key is empty.
	Passphrase string

	// Salt for passphrase derivation. A database should use its own salt;
	// defaultSalt is used when empty.
	Salt []byte
}

// defaultSalt is the key-derivation salt used when the config provides
// none.
var defaultSalt = []byte("crabdb-log-salt-v1")

// keyIterations is the PBKDF2 iteration count for passphrase-derived keys.
const keyIterations = 100000

// aesKeySize is the AES-256 key length in bytes.
const aesKeySize = 32

// ErrInvalidEncryptionKey is returned when neither a valid key nor a
// passphrase is configured.
var ErrInvalidEncryptionKey = errors.New("encryption key must be 32 bytes or derived from a passphrase")

// Encryptor seals and opens individual log entries.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor builds an Encryptor from the config.
func NewEncryptor(config EncryptionConfig) (*Encryptor, error) {
	key := config.Key
	if len(key) == 0 {
		if config.Passphrase == "" {
			return nil, ErrInvalidEncryptionKey
		}
		salt := config.Salt
		if len(salt) == 0 {
			salt = defaultSalt
		}
		key = pbkdf2.Key([]byte(config.Passphrase), salt, keyIterations, aesKeySize, sha256.New)
	}
	if len(key) != aesKeySize {
		return nil, fmt.Errorf("%w: have %d bytes", ErrInvalidEncryptionKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext and returns nonce || ciphertext || tag.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a sealed entry produced by Encrypt. It fails when the
// entry was tampered with or sealed under a different key.
func (e *Encryptor) Decrypt(sealed []byte) ([]byte, error) {
	if len(sealed) < e.aead.NonceSize() {
		return nil, errors.New("sealed entry shorter than nonce")
	}
	nonce, ciphertext := sealed[:e.aead.NonceSize()], sealed[e.aead.NonceSize():]
	return e.aead.Open(nil, nonce, ciphertext, nil)
}
