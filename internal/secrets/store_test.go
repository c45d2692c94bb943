package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
)

func writeHomeConfig(t *testing.T, body string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "famtree")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if body == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestResolveKeyringBackendInfo(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		config string
		want   KeyringBackendInfo
	}{
		{"default", "", "", KeyringBackendInfo{Value: "auto", Source: "default"}},
		{"config", "", "keyring_backend: File\n", KeyringBackendInfo{Value: "file", Source: "config"}},
		{"env beats config", " Keychain ", "keyring_backend: file\n", KeyringBackendInfo{Value: "keychain", Source: "env"}},
		{"blank config value", "", "keyring_backend: \"  \"\n", KeyringBackendInfo{Value: "auto", Source: "default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeHomeConfig(t, tt.config)
			t.Setenv(envBackend, tt.env)

			if got := ResolveKeyringBackendInfo(); got != tt.want {
				t.Errorf("ResolveKeyringBackendInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAllowedBackends(t *testing.T) {
	tests := []struct {
		value   string
		want    []keyring.BackendType
		wantErr bool
	}{
		{value: "auto"},
		{value: ""},
		{value: "keychain", want: []keyring.BackendType{keyring.KeychainBackend}},
		{value: "secret-service", want: []keyring.BackendType{keyring.SecretServiceBackend}},
		{value: "wincred", want: []keyring.BackendType{keyring.WinCredBackend}},
		{value: "file", want: []keyring.BackendType{keyring.FileBackend}},
		{value: "pass", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := allowedBackends(KeyringBackendInfo{Value: tt.value})
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "auto|keychain|secret-service|wincred|file") {
					t.Fatalf("expected invalid backend error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("allowedBackends(%q) error = %v", tt.value, err)
			}
			if len(got) != len(tt.want) || (len(got) == 1 && got[0] != tt.want[0]) {
				t.Errorf("allowedBackends(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestOpenDefault_RejectsUnknownBackend(t *testing.T) {
	writeHomeConfig(t, "")
	t.Setenv(envBackend, "pass")
	stubOpen(t, func(keyring.Config) (keyring.Keyring, error) {
		t.Fatal("keyring opened despite invalid backend")
		return nil, nil
	})

	if _, err := OpenDefault(); err == nil || !strings.Contains(err.Error(), `"pass"`) {
		t.Fatalf("expected invalid backend error, got %v", err)
	}
}

func TestOpenDefault_FileBackendConfig(t *testing.T) {
	writeHomeConfig(t, "")
	t.Setenv(envBackend, "file")

	var got keyring.Config
	stubOpen(t, func(cfg keyring.Config) (keyring.Keyring, error) {
		got = cfg
		return keyring.NewArrayKeyring(nil), nil
	})

	store, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	if store == nil {
		t.Fatal("OpenDefault() returned nil store")
	}
	if got.ServiceName != "famtree" {
		t.Errorf("ServiceName = %q, want famtree", got.ServiceName)
	}
	if len(got.AllowedBackends) != 1 || got.AllowedBackends[0] != keyring.FileBackend {
		t.Errorf("AllowedBackends = %v, want [file]", got.AllowedBackends)
	}
	if !strings.HasSuffix(got.FileDir, filepath.Join(".config", "famtree", "keyring")) {
		t.Errorf("FileDir = %q", got.FileDir)
	}
}

func TestWrapKeychainError(t *testing.T) {
	plain := errors.New("secret service unavailable")
	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"locked by name", errors.New("read secret: errSecInteractionNotAllowed"), true},
		{"locked by code", errors.New("store secret: OSStatus -25308"), true},
		{"other error", plain, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapKeychainError(tt.err)
			if !errors.Is(wrapped, tt.err) {
				t.Fatalf("wrapped error lost its cause: %v", wrapped)
			}
			if got := strings.Contains(wrapped.Error(), "security unlock-keychain"); got != tt.wantHint {
				t.Errorf("unlock hint present = %v, want %v (%q)", got, tt.wantHint, wrapped)
			}
		})
	}
	if wrapKeychainError(nil) != nil {
		t.Error("wrapKeychainError(nil) should be nil")
	}
}
