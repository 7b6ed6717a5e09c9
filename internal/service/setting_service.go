package service

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/deepstock/deepstock-backend/internal/repository"
)

// Setting keys used by the application.
const (
	SettingProviderToken = "market_provider_token"
	SettingBaseCurrency  = "base_currency"
)

// SettingService handles key/value application settings. Secret values (the
// market provider token) are fernet-encrypted at rest; a service configured
// without a key can still serve plaintext settings but refuses secrets.
type SettingService struct {
	settingRepo *repository.SettingRepository
	key         *fernet.Key
}

// NewSettingService creates a new SettingService. fernetKey is the base64
// key for secret encryption; empty disables secret storage.
func NewSettingService(settingRepo *repository.SettingRepository, fernetKey string) (*SettingService, error) {
	s := &SettingService{settingRepo: settingRepo}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("invalid fernet key: %w", err)
		}
		s.key = key
	}
	return s, nil
}

// Get returns a setting value, decrypting it when it was stored encrypted.
func (s *SettingService) Get(key string) (string, error) {
	value, isEncrypted, err := s.settingRepo.Get(key)
	if err != nil {
		return "", err
	}
	if !isEncrypted {
		return value, nil
	}

	if s.key == nil {
		return "", fmt.Errorf("setting %s is encrypted but no fernet key is configured", key)
	}
	// TTL 0: stored secrets do not expire.
	plaintext := fernet.VerifyAndDecrypt([]byte(value), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt setting %s", key)
	}
	return string(plaintext), nil
}

// Set stores a plaintext setting.
func (s *SettingService) Set(key, value string) error {
	return s.settingRepo.Set(key, value, false)
}

// SetSecret encrypts and stores a sensitive setting.
func (s *SettingService) SetSecret(key, value string) error {
	if s.key == nil {
		return fmt.Errorf("cannot store secret %s: no fernet key is configured", key)
	}
	ciphertext, err := fernet.EncryptAndSign([]byte(value), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
	}
	return s.settingRepo.Set(key, string(ciphertext), true)
}

// Delete removes a setting.
func (s *SettingService) Delete(key string) error {
	return s.settingRepo.Delete(key)
}
