// Package secrets keeps the API key used by the HTTP server in the OS
// keyring, falling back to an encrypted file store where no keyring daemon
// is reachable.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/salmonumbrella/famtree/internal/config"
)

const (
	// ServerKeyName is the keyring entry holding the serve API key.
	ServerKeyName = "server:api-key"

	keyringOpenTimeout = 5 * time.Second

	envBackend  = "FAMTREE_KEYRING_BACKEND"
	envPassword = "FAMTREE_KEYRING_PASSWORD"
)

var (
	errKeyringTimeout = errors.New("timed out opening keyring")

	// ErrNotFound is returned when no secret is stored under a name.
	ErrNotFound = errors.New("secret not found")
)

// keyringOpenFunc is swapped in tests.
var keyringOpenFunc = keyring.Open

// Secret is a stored credential.
type Secret struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists named secrets.
type Store interface {
	Keys() ([]string, error)
	Set(name string, secret Secret) error
	Get(name string) (Secret, error)
	Delete(name string) error
}

// KeyringStore is a Store backed by 99designs/keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore wraps an opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// KeyringBackendInfo describes which backend was requested and where the
// choice came from.
type KeyringBackendInfo struct {
	Value  string
	Source string
}

// ResolveKeyringBackendInfo picks the backend with precedence env > config > auto.
func ResolveKeyringBackendInfo() KeyringBackendInfo {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(envBackend))); v != "" {
		return KeyringBackendInfo{Value: v, Source: "env"}
	}
	if cfg, err := config.ReadConfig(); err == nil && strings.TrimSpace(cfg.KeyringBackend) != "" {
		return KeyringBackendInfo{Value: strings.ToLower(strings.TrimSpace(cfg.KeyringBackend)), Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

// OpenDefault opens the keyring for this application.
func OpenDefault() (Store, error) {
	info := ResolveKeyringBackendInfo()
	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if shouldForceFileBackend(runtime.GOOS, info, dbusAddr) {
		info.Value = "file"
	}

	backends, err := allowedBackends(info)
	if err != nil {
		return nil, err
	}

	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:              config.AppName,
		AllowedBackends:          backends,
		KeychainTrustApplication: true,
		FileDir:                  keyringDir,
		FilePasswordFunc:         filePassword,
	}

	var ring keyring.Keyring
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, wrapKeychainError(fmt.Errorf("open keyring: %w", err))
	}
	return NewKeyringStore(ring), nil
}

func allowedBackends(info KeyringBackendInfo) ([]keyring.BackendType, error) {
	switch info.Value {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "secret-service":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "wincred":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("invalid keyring backend %q (expected auto|keychain|secret-service|wincred|file)", info.Value)
	}
}

func filePassword(prompt string) (string, error) {
	if v := os.Getenv(envPassword); v != "" {
		return v, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// shouldForceFileBackend reports whether auto mode on Linux has no D-Bus
// session to reach a secret service.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening may hang on an
// unresponsive secret service.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring: ring, err: err}
	}()

	select {
	case res := <-ch:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; set %s=file to use the file backend", errKeyringTimeout, timeout, envBackend)
	}
}

// wrapKeychainError adds unlock instructions to locked macOS keychain errors.
func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "errSecInteractionNotAllowed") && !strings.Contains(msg, "-25308") {
		return err
	}
	return fmt.Errorf("%w\nthe login keychain is locked; run: security unlock-keychain ~/Library/Keychains/login.keychain-db", err)
}

// Keys lists stored secret names.
func (s *KeyringStore) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, wrapKeychainError(fmt.Errorf("list keys: %w", err))
	}
	return keys, nil
}

// Set stores a secret under name.
func (s *KeyringStore) Set(name string, secret Secret) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name required")
	}
	if secret.CreatedAt.IsZero() {
		secret.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("encode secret: %w", err)
	}
	if err := s.ring.Set(keyring.Item{Key: name, Data: data, Label: config.AppName + " " + name}); err != nil {
		return wrapKeychainError(fmt.Errorf("store secret: %w", err))
	}
	return nil
}

// Get returns the secret stored under name, or ErrNotFound.
func (s *KeyringStore) Get(name string) (Secret, error) {
	item, err := s.ring.Get(name)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Secret{}, ErrNotFound
		}
		return Secret{}, wrapKeychainError(fmt.Errorf("read secret: %w", err))
	}
	var secret Secret
	if err := json.Unmarshal(item.Data, &secret); err != nil {
		return Secret{}, fmt.Errorf("decode secret: %w", err)
	}
	return secret, nil
}

// Delete removes the secret stored under name. Deleting a missing secret
// is not an error.
func (s *KeyringStore) Delete(name string) error {
	if err := s.ring.Remove(name); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return wrapKeychainError(fmt.Errorf("delete secret: %w", err))
	}
	return nil
}
