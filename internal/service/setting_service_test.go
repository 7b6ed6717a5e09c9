package service_test

import (
	"testing"

	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/service"
	"github.com/deepstock/deepstock-backend/internal/testutil"
)

// TestSettingService_PlaintextSettings tests plain key/value settings.
//
// WHY: Non-sensitive settings round-trip as stored. Deleting one must make
// subsequent reads fail.
func TestSettingService_PlaintextSettings(t *testing.T) {
	t.Run("round-trips a plaintext value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.Set(service.SettingBaseCurrency, "CZK"); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}

		value, err := svc.Get(service.SettingBaseCurrency)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if value != "CZK" {
			t.Errorf("Expected CZK, got %s", value)
		}
	})

	t.Run("overwrites an existing value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.Set(service.SettingBaseCurrency, "CZK"); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}
		if err := svc.Set(service.SettingBaseCurrency, "EUR"); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}

		value, err := svc.Get(service.SettingBaseCurrency)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if value != "EUR" {
			t.Errorf("Expected EUR, got %s", value)
		}
	})

	t.Run("deleted settings are gone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.Set("some_key", "some_value"); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}
		if err := svc.Delete("some_key"); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		if _, err := svc.Get("some_key"); err == nil {
			t.Error("Expected error reading a deleted setting, got nil")
		}
	})
}

// TestSettingService_Secrets tests encrypted settings.
//
// WHY: The provider token must never land in the database in plaintext. The
// service encrypts on write, decrypts on read, and refuses secret storage
// when no key is configured.
func TestSettingService_Secrets(t *testing.T) {
	t.Run("round-trips a secret through encryption", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.SetSecret(service.SettingProviderToken, "tok-12345"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}

		value, err := svc.Get(service.SettingProviderToken)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if value != "tok-12345" {
			t.Errorf("Expected decrypted token, got %s", value)
		}
	})

	t.Run("stored ciphertext differs from the plaintext", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.SetSecret(service.SettingProviderToken, "tok-12345"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}

		raw, isEncrypted, err := repository.NewSettingRepository(db).Get(service.SettingProviderToken)
		if err != nil {
			t.Fatalf("Repository Get() returned unexpected error: %v", err)
		}
		if !isEncrypted {
			t.Error("Expected the stored value to be flagged encrypted")
		}
		if raw == "tok-12345" {
			t.Error("Expected ciphertext at rest, found the plaintext")
		}
	})

	t.Run("refuses secrets without a configured key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc, err := service.NewSettingService(repository.NewSettingRepository(db), "")
		if err != nil {
			t.Fatalf("NewSettingService() returned unexpected error: %v", err)
		}

		if err := svc.SetSecret(service.SettingProviderToken, "tok-12345"); err == nil {
			t.Error("Expected error storing a secret without a key, got nil")
		}
	})

	t.Run("rejects an invalid fernet key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		if _, err := service.NewSettingService(repository.NewSettingRepository(db), "not-a-key"); err == nil {
			t.Error("Expected error for an invalid fernet key, got nil")
		}
	})
}
