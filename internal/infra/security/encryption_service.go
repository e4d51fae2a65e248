package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix tags the envelope format so a future key rotation can tell
// sealed values apart.
const sealedPrefix = "v1:"

var (
	errEmptyKey  = errors.New("encryption key is empty")
	errMalformed = errors.New("malformed sealed value")
)

// EncryptionService seals the stored Drive token with AES-256-GCM.
type EncryptionService struct {
	aead cipher.AEAD
}

// NewEncryptionService accepts a raw 32-byte key, a base64-encoded 32-byte
// key, or any other passphrase, which is stretched with SHA-256.
func NewEncryptionService(key string) (*EncryptionService, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	block, err := aes.NewCipher(keyBytes(key))
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &EncryptionService{aead: aead}, nil
}

func keyBytes(key string) []byte {
	if len(key) == 32 {
		return []byte(key)
	}
	if raw, err := base64.StdEncoding.DecodeString(key); err == nil && len(raw) == 32 {
		return raw
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// Encrypt returns "v1:" followed by base64url(nonce|ciphertext).
func (e *EncryptionService) Encrypt(plaintext string) (string, error) {
	buf := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := e.aead.Seal(buf, buf, []byte(plaintext), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (e *EncryptionService) Decrypt(sealed string) (string, error) {
	body, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", errMalformed
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errMalformed, err)
	}
	n := e.aead.NonceSize()
	if len(raw) < n+e.aead.Overhead() {
		return "", errMalformed
	}
	plain, err := e.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plain), nil
}
