package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"

	"github.com/halopax/unlockd/internal/config"
)

const (
	keyLength   = 32
	nonceLength = 16
	iterations  = 100000
)

// keyDerivationSalt is fixed so ciphertexts written by one process remain
// readable by another sharing the same master key.
var keyDerivationSalt = []byte("unlockd-vault-salt")

// devFallbackKey is only ever used outside production.
var devFallbackKey = []byte("dev-key-not-secure-change-in-pro")

var (
	ErrMasterKeyRequired = errors.New("master_encryption_key_required_in_production")
	ErrMalformedPayload  = errors.New("malformed_encrypted_payload")
)

// Vault seals and opens tenant and supplier credentials with AES-256-GCM.
// Sealed values are base64(nonce || ciphertext || tag).
type Vault struct {
	key []byte
}

func New(cfg config.Config, log *zap.Logger) (*Vault, error) {
	if cfg.MasterEncryptionKey == "" {
		if cfg.IsProduction() {
			return nil, ErrMasterKeyRequired
		}

		log.Warn("MASTER_ENCRYPTION_KEY is not set, using built-in development key. Do not run this configuration in production.")
		return &Vault{key: devFallbackKey}, nil
	}

	key := pbkdf2.Key([]byte(cfg.MasterEncryptionKey), keyDerivationSalt, iterations, keyLength, sha256.New)
	return &Vault{key: key}, nil
}

// Encrypt seals plaintext. An empty plaintext stays empty so optional
// credential columns round-trip without a sentinel.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := v.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a sealed value. Truncated or tampered payloads fail closed.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedPayload
	}

	aead, err := v.aead()
	if err != nil {
		return "", err
	}

	if len(raw) < nonceLength+aead.Overhead() {
		return "", ErrMalformedPayload
	}

	plaintext, err := aead.Open(nil, raw[:nonceLength], raw[nonceLength:], nil)
	if err != nil {
		return "", ErrMalformedPayload
	}

	return string(plaintext), nil
}

func (v *Vault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCMWithNonceSize(block, nonceLength)
}
