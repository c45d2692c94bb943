package secrets

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
)

// stubOpen replaces keyringOpenFunc for the duration of a test.
func stubOpen(t *testing.T, fn func(keyring.Config) (keyring.Keyring, error)) {
	t.Helper()
	prev := keyringOpenFunc
	keyringOpenFunc = fn
	t.Cleanup(func() { keyringOpenFunc = prev })
}

func TestOpenKeyringWithTimeout_ReturnsOpenedRing(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: ServerKeyName, Data: []byte(`{"value":"k"}`)}})
	var gotService string
	stubOpen(t, func(cfg keyring.Config) (keyring.Keyring, error) {
		gotService = cfg.ServiceName
		return ring, nil
	})

	opened, err := openKeyringWithTimeout(keyring.Config{ServiceName: "famtree"}, time.Second)
	if err != nil {
		t.Fatalf("openKeyringWithTimeout() error = %v", err)
	}
	if gotService != "famtree" {
		t.Errorf("config not passed through, service = %q", gotService)
	}

	secret, err := NewKeyringStore(opened).Get(ServerKeyName)
	if err != nil || secret.Value != "k" {
		t.Fatalf("Get() = %+v, %v", secret, err)
	}
}

func TestOpenKeyringWithTimeout_PassesOpenError(t *testing.T) {
	boom := errors.New("dbus: no such interface")
	stubOpen(t, func(keyring.Config) (keyring.Keyring, error) { return nil, boom })

	_, err := openKeyringWithTimeout(keyring.Config{}, time.Second)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if errors.Is(err, errKeyringTimeout) {
		t.Fatalf("open error reported as timeout: %v", err)
	}
}

func TestOpenKeyringWithTimeout_HangingServiceSuggestsFileBackend(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	stubOpen(t, func(keyring.Config) (keyring.Keyring, error) {
		defer close(done)
		<-release
		return keyring.NewArrayKeyring(nil), nil
	})
	t.Cleanup(func() {
		close(release)
		<-done
	})

	_, err := openKeyringWithTimeout(keyring.Config{}, 20*time.Millisecond)
	if !errors.Is(err, errKeyringTimeout) {
		t.Fatalf("error = %v, want errKeyringTimeout", err)
	}
	for _, want := range []string{"FAMTREE_KEYRING_BACKEND=file", "20ms"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("timeout error %q missing %q", err, want)
		}
	}
}

func TestBackendSelection(t *testing.T) {
	const bus = "unix:path=/run/user/1000/bus"
	tests := []struct {
		name        string
		goos        string
		backend     string
		dbusAddr    string
		forceFile   bool
		withTimeout bool
	}{
		{"linux auto without session bus", "linux", "auto", "", true, false},
		{"linux auto with session bus", "linux", "auto", bus, false, true},
		{"linux secret-service requested", "linux", "secret-service", bus, false, false},
		{"linux file requested", "linux", "file", bus, false, false},
		{"darwin auto", "darwin", "auto", "", false, false},
		{"windows auto", "windows", "auto", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := KeyringBackendInfo{Value: tt.backend}
			if got := shouldForceFileBackend(tt.goos, info, tt.dbusAddr); got != tt.forceFile {
				t.Errorf("shouldForceFileBackend() = %v, want %v", got, tt.forceFile)
			}
			if got := shouldUseKeyringTimeout(tt.goos, info, tt.dbusAddr); got != tt.withTimeout {
				t.Errorf("shouldUseKeyringTimeout() = %v, want %v", got, tt.withTimeout)
			}
		})
	}
}
