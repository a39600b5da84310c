package blob

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	keySalt = "bharatid/documents/v1"
	keyInfo = "aes-256-gcm"
)

// ErrCorrupt is returned when a stored blob fails authentication.
var ErrCorrupt = errors.New("blob failed authentication")

// SealedStore encrypts blobs with AES-256-GCM before handing them to the
// wrapped backend. The key is derived from the configured secret with
// HKDF-SHA256. Each blob is nonce||ciphertext, with the blob key as additional
// data so a blob cannot be replayed under another key.
type SealedStore struct {
	inner Store
	aead  cipher.AEAD
}

func NewSealedStore(inner Store, secret string) (*SealedStore, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(keySalt), []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SealedStore{inner: inner, aead: aead}, nil
}

func (s *SealedStore) Put(ctx context.Context, key string, data []byte) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, data, []byte(key))
	return s.inner.Put(ctx, key, sealed)
}

func (s *SealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCorrupt
	}
	plain, err := s.aead.Open(nil, sealed[:n], sealed[n:], []byte(key))
	if err != nil {
		return nil, ErrCorrupt
	}
	return plain, nil
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
