package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
)

// envelopePrefix tags an encrypted record. The ciphertext rides in the
// ActiveID field of an otherwise empty state, so any StateStore can carry it
// without schema changes.
const envelopePrefix = "enc:v1:"

// ErrDecryptionFailed is returned when no configured key can decrypt a
// stored state.
var ErrDecryptionFailed = errors.New("state decryption failed")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts view states
// using AES-GCM. Expanded node ids reveal what a user navigated, so shared
// stores should not hold them in the clear.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, key string, state domain.ViewState) error {
	plainText, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	envelope := domain.ViewState{
		ActiveID: envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Save(ctx, key, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, key string) (domain.ViewState, error) {
	envelope, err := m.next.Load(ctx, key)
	if err != nil {
		return domain.ViewState{}, err
	}

	// States written before the middleware was enabled pass through as-is.
	if !strings.HasPrefix(envelope.ActiveID, envelopePrefix) {
		return envelope, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(envelope.ActiveID, envelopePrefix))
	if err != nil {
		return domain.ViewState{}, fmt.Errorf("malformed state envelope: %w", err)
	}

	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	for _, k := range keys {
		plainText, err := decrypt(ciphertext, k)
		if err != nil {
			continue
		}
		var state domain.ViewState
		if err := json.Unmarshal(plainText, &state); err != nil {
			return domain.ViewState{}, fmt.Errorf("failed to unmarshal state: %w", err)
		}
		return state, nil
	}
	return domain.ViewState{}, ErrDecryptionFailed
}

func (m *encryptionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plainText, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plainText, nil), nil
}

func decrypt(cipherText, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, sealed := cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
