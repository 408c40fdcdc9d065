package main

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveSocket_SystemSocket(t *testing.T) {
	dir := t.TempDir()
	system := touch(t, filepath.Join(dir, "spimotord.sock"))

	socket, err := resolveSocket(system, filepath.Join(dir, "nope.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if socket != system {
		t.Errorf("unexpected socket %q", socket)
	}
}

func TestResolveSocket_FromConfig(t *testing.T) {
	dir := t.TempDir()
	saved := touch(t, filepath.Join(dir, "saved.sock"))
	cpath := filepath.Join(dir, "spimotorctl.yml")
	if err := os.WriteFile(cpath, []byte("socket: "+saved+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	socket, err := resolveSocket(filepath.Join(dir, "missing.sock"), cpath)
	if err != nil {
		t.Fatal(err)
	}
	if socket != saved {
		t.Errorf("unexpected socket %q", socket)
	}
}

func TestResolveSocket_StaleConfig(t *testing.T) {
	dir := t.TempDir()
	cpath := filepath.Join(dir, "spimotorctl.yml")
	if err := os.WriteFile(cpath, []byte("socket: "+filepath.Join(dir, "gone.sock")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := resolveSocket(filepath.Join(dir, "missing.sock"), cpath); err != errNoSocket {
		t.Errorf("expected errNoSocket, got %v", err)
	}
}

func TestResolveSocket_NothingSaved(t *testing.T) {
	dir := t.TempDir()

	if _, err := resolveSocket(filepath.Join(dir, "missing.sock"), filepath.Join(dir, "nope.yml")); err != errNoSocket {
		t.Errorf("expected errNoSocket, got %v", err)
	}
}
