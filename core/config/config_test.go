package config_test

import (
	"strings"
	"testing"

	"github.com/keymacro/keymacro/core/config"
)

func TestParseOptionsValid(t *testing.T) {
	opts, err := config.ParseOptions([]byte(`{"keystroke_sleep_ms": 50}`))
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.KeystrokeSleepMs == nil || *opts.KeystrokeSleepMs != 50 {
		t.Fatalf("KeystrokeSleepMs = %v, want 50", opts.KeystrokeSleepMs)
	}
}

func TestParseOptionsRejectsOutOfRange(t *testing.T) {
	_, err := config.ParseOptions([]byte(`{"keystroke_sleep_ms": -5}`))
	if err == nil {
		t.Fatal("expected error for negative keystroke_sleep_ms")
	}
}

func TestParseOptionsRejectsUnknownField(t *testing.T) {
	_, err := config.ParseOptions([]byte(`{"wat": true}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "config:") {
		t.Fatalf("expected config-prefixed error, got %v", err)
	}
}

func intPtr(v int) *int { return &v }

func TestStoreResolutionOrder(t *testing.T) {
	store := config.NewStore(config.Options{})

	if got := store.KeystrokeSleepMs("any"); got != config.DefaultKeystrokeSleepMs {
		t.Fatalf("default: got %d, want %d", got, config.DefaultKeystrokeSleepMs)
	}

	store.SetGlobal(config.Options{KeystrokeSleepMs: intPtr(100)})
	if got := store.KeystrokeSleepMs("any"); got != 100 {
		t.Fatalf("global: got %d, want 100", got)
	}

	store.SetOverride("left-hand", config.Options{KeystrokeSleepMs: intPtr(50)})
	if got := store.KeystrokeSleepMs("left-hand"); got != 50 {
		t.Fatalf("override: got %d, want 50", got)
	}
	if got := store.KeystrokeSleepMs("right-hand"); got != 100 {
		t.Fatalf("unrelated mapping should still see global: got %d, want 100", got)
	}

	store.ClearOverride("left-hand")
	if got := store.KeystrokeSleepMs("left-hand"); got != 100 {
		t.Fatalf("after clear: got %d, want 100", got)
	}
}
