package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLitePutGet(t *testing.T) {
	kv := openTestSQLite(t)

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := kv.Put("k", "v1"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := kv.Get("k")
	if err != nil || !ok || v != "v1" {
		t.Fatalf("get after put: v=%q ok=%v err=%v", v, ok, err)
	}

	// Put on an existing key replaces the value.
	if err := kv.Put("k", "v2"); err != nil {
		t.Fatal(err)
	}
	v, _, _ = kv.Get("k")
	if v != "v2" {
		t.Fatalf("expected replaced value, got %q", v)
	}
}

func TestSQLiteDelete(t *testing.T) {
	kv := openTestSQLite(t)

	if err := kv.Put("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatal("expected key gone after delete")
	}
	// Deleting an absent key is not an error.
	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Put("k", "v"); err != nil {
		t.Fatal(err)
	}
	kv.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	kv2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer kv2.Close()
	v, ok, err := kv2.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}
