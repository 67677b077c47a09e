package toolroot

import (
	"errors"
	"os"
	"path/filepath"
)

// EnvVar overrides discovery with an explicit checkout path.
const EnvVar = "OCI_ENV_PATH"

// Namespace is the plugin name under which the tool's own profiles live.
const Namespace = "oci_env"

// ErrNotFound indicates no oci-env checkout could be located.
var ErrNotFound = errors.New("oci-env checkout not found; run from inside it or set OCI_ENV_PATH")

// Discover locates the oci-env checkout. OCI_ENV_PATH wins; otherwise it walks
// upward from start, then from the directory holding the running executable.
func Discover(start string) (string, error) {
	if env := os.Getenv(EnvVar); env != "" {
		root, err := filepath.Abs(env)
		if err != nil {
			return "", err
		}
		if !IsRoot(root) {
			return "", errors.New(EnvVar + " does not point at an oci-env checkout: " + root)
		}
		return root, nil
	}
	if root, err := locateRoot(start); err == nil {
		return root, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", ErrNotFound
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return locateRoot(filepath.Dir(exe))
}

func locateRoot(start string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if IsRoot(cur) {
			return cur, nil
		}
		next := filepath.Dir(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return "", ErrNotFound
}

// IsRoot reports whether dir looks like an oci-env checkout.
func IsRoot(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, "base", "compose.yaml"))
	if err != nil {
		return false
	}
	return !fi.IsDir()
}
