package toolroot

import (
	"os"
	"path/filepath"
	"testing"
)

func makeCheckout(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "oci_env")
	if err := os.MkdirAll(filepath.Join(root, "base"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "base", "compose.yaml"), []byte("services: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestDiscoverWalksUpward(t *testing.T) {
	t.Setenv(EnvVar, "")
	root := makeCheckout(t)
	nested := filepath.Join(root, "profiles", "demo")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != root {
		t.Fatalf("got %s, want %s", got, root)
	}
}

func TestDiscoverHonorsEnv(t *testing.T) {
	root := makeCheckout(t)
	t.Setenv(EnvVar, root)
	got, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != root {
		t.Fatalf("got %s, want %s", got, root)
	}
}

func TestDiscoverRejectsBadEnv(t *testing.T) {
	t.Setenv(EnvVar, t.TempDir())
	if _, err := Discover(t.TempDir()); err == nil {
		t.Fatal("expected error for env pointing at a non-checkout")
	}
}
