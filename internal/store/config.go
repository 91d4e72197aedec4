package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
)

const (
	ConfigKey = "novaspeak_config"

	encryptedPrefix = "kms:"
)

type cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// MalformedConfigError is returned when the stored document cannot be decoded.
type MalformedConfigError struct {
	Err error
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed stored config: %v", e.Err)
}
func (e *MalformedConfigError) Unwrap() error { return e.Err }

type configStore struct {
	kv     KV
	cipher cipher
}

// NewConfigStore persists the configuration document in kv. When c is
// non-nil the read key is stored encrypted.
func NewConfigStore(kv KV, c cipher) *configStore {
	return &configStore{kv: kv, cipher: c}
}

func (s *configStore) Load(ctx context.Context) (dto.StoredConfig, bool, error) {
	raw, found, err := s.kv.Get(ctx, ConfigKey)
	if err != nil || !found {
		return dto.StoredConfig{}, false, err
	}

	var doc dto.StoredConfig
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return dto.StoredConfig{}, true, &MalformedConfigError{Err: err}
	}

	if strings.HasPrefix(doc.ReadAPIKey, encryptedPrefix) {
		if s.cipher == nil {
			return dto.StoredConfig{}, true, errs.NewEncryptionError("read key is encrypted but no key is configured", nil)
		}
		plain, err := s.cipher.Decrypt(ctx, strings.TrimPrefix(doc.ReadAPIKey, encryptedPrefix))
		if err != nil {
			return dto.StoredConfig{}, true, errs.NewEncryptionError("failed to decrypt read key", err)
		}
		doc.ReadAPIKey = plain
	}
	return doc, true, nil
}

func (s *configStore) Save(ctx context.Context, doc dto.StoredConfig) error {
	if s.cipher != nil && doc.ReadAPIKey != "" {
		ct, err := s.cipher.Encrypt(ctx, doc.ReadAPIKey)
		if err != nil {
			return errs.NewEncryptionError("failed to encrypt read key", err)
		}
		doc.ReadAPIKey = encryptedPrefix + ct
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return s.kv.Put(ctx, ConfigKey, string(raw))
}
