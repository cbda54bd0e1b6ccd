package secrets

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSigningKeyIsGeneratedOnceAndPersisted(t *testing.T) {
	dir := t.TempDir()
	first, err := SigningKey(dir)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if len(first) != signingKeyLen {
		t.Fatalf("key length = %d", len(first))
	}
	second, err := SigningKey(dir)
	if err != nil {
		t.Fatalf("signing key again: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("key should be stable across calls")
	}

	info, err := os.Stat(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, fileName))
	if bytes.Contains(raw, first) {
		t.Fatalf("key stored in plain text")
	}
}

func TestDeleteSigningKeyRotates(t *testing.T) {
	dir := t.TempDir()
	first, _ := SigningKey(dir)
	if err := DeleteSigningKey(dir); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := Fetch(dir, signingKeyID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("fetch after delete err = %v", err)
	}
	second, _ := SigningKey(dir)
	if bytes.Equal(first, second) {
		t.Fatalf("a new key should be generated after delete")
	}
}

func TestStoreNamesAreNormalised(t *testing.T) {
	dir := t.TempDir()
	if err := Store(dir, "  Redis-Password ", []byte("hunter2")); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := Fetch(dir, "redis-password")
	if err != nil || string(got) != "hunter2" {
		t.Fatalf("fetch = %q, %v", got, err)
	}
	if err := Store(dir, "   ", nil); err == nil || !strings.Contains(err.Error(), "name required") {
		t.Fatalf("blank name err = %v", err)
	}
}
