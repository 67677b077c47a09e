package engine

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pulp/oci-env/internal/config"
	"github.com/pulp/oci-env/internal/execx"
	"github.com/pulp/oci-env/internal/execx/execxtest"
)

func newTestClient(t *testing.T, mutate func(*config.Config)) (*Client, *execxtest.Recorder) {
	t.Helper()
	src := t.TempDir()
	root := filepath.Join(src, "oci_env")
	cfg := config.Default(root)
	if mutate != nil {
		mutate(&cfg)
	}
	rec := &execxtest.Recorder{}
	c := New(cfg, root, nil)
	c.Runner = rec
	c.TTY = func() bool { return true }
	return c, rec
}

func TestComposeArgsIncludesExistingProfiles(t *testing.T) {
	c, _ := newTestClient(t, func(cfg *config.Config) {
		cfg.ComposeBinary = "docker"
		cfg.ComposeProfile = "galaxy_ng/ui:missing:local"
	})
	uiDir := filepath.Join(c.Config.SrcDir, "galaxy_ng", "profiles", "ui")
	localDir := filepath.Join(c.Root, "profiles", "local")
	for _, dir := range []string{uiDir, localDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "compose.yaml"), []byte("services: {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := c.ComposeArgs([]string{"up", "-d"})
	want := []string{
		"docker", "compose", "-p", "oci_env",
		"-f", filepath.Join(c.Root, "base", "compose.yaml"),
		"-f", filepath.Join(uiDir, "compose.yaml"),
		"-f", filepath.Join(localDir, "compose.yaml"),
		"up", "-d",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ComposeArgs mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBinaryDefaultsToPodmanCompose(t *testing.T) {
	c, _ := newTestClient(t, nil)
	if got := c.Binary(); !reflect.DeepEqual(got, []string{"podman-compose"}) {
		t.Fatalf("unexpected binary %q", got)
	}
}

func TestExecFlags(t *testing.T) {
	cases := []struct {
		name string
		opts ExecOptions
		tty  bool
		want []string
	}{
		{name: "interactive", opts: ExecOptions{Interactive: true}, tty: true, want: []string{"exec", "pulp", "bash"}},
		{name: "non-interactive", opts: ExecOptions{}, tty: true, want: []string{"exec", "-T", "pulp", "bash"}},
		{name: "no tty", opts: ExecOptions{Interactive: true}, tty: false, want: []string{"exec", "-T", "pulp", "bash"}},
		{name: "privileged service", opts: ExecOptions{Interactive: true, Service: "ui", Privileged: true}, tty: true, want: []string{"exec", "--privileged", "ui", "bash"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestClient(t, nil)
			c.TTY = func() bool { return tc.tty }
			if err := c.Exec(context.Background(), []string{"bash"}, tc.opts); err != nil {
				t.Fatalf("Exec: %v", err)
			}
			argv := rec.Argvs()[0]
			tail := argv[len(argv)-len(tc.want):]
			if !reflect.DeepEqual(tail, tc.want) {
				t.Fatalf("got tail %q, want %q", tail, tc.want)
			}
		})
	}
}

func TestExecContainerScript(t *testing.T) {
	c, rec := newTestClient(t, nil)
	err := c.ExecContainerScript(context.Background(), "db_restore.sh", []string{"pulp_db.tar", "1"}, ExecOptions{Interactive: true})
	if err != nil {
		t.Fatalf("ExecContainerScript: %v", err)
	}
	argv := rec.Argvs()[0]
	want := []string{"pulp", "bash", "/opt/oci_env/base/container_scripts/db_restore.sh", "pulp_db.tar", "1"}
	if tail := argv[len(argv)-len(want):]; !reflect.DeepEqual(tail, want) {
		t.Fatalf("got tail %q, want %q", tail, want)
	}
	env := strings.Join(rec.Calls[0].Env, "\n")
	if !strings.Contains(env, "COMPOSE_PROJECT_NAME=oci_env") {
		t.Fatal("expected config to be exported into the compose environment")
	}
}

func TestRunReportsExitCode(t *testing.T) {
	c, rec := newTestClient(t, nil)
	rec.FailAt = map[int]int{1: 7}
	err := c.ComposeCommand(context.Background(), []string{"ps"}, false)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 7 {
		t.Fatalf("expected code 7, got %d", exitErr.Code)
	}
	if !errors.Is(err, ErrExecutionFailed) {
		t.Fatal("expected ExitError to match ErrExecutionFailed")
	}
}

func TestUnstartedProcessIsNotAnExitError(t *testing.T) {
	c, rec := newTestClient(t, nil)
	rec.Unstarted = map[int]bool{1: true}
	err := c.Exec(context.Background(), []string{"pulp", "status"}, ExecOptions{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("expected a plain error, got ExitError %v", exitErr)
	}
	if !errors.Is(err, execx.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "podman-compose: ") {
		t.Fatalf("expected the binary name in %q", err)
	}
}

func TestCaptureUnstartedProcess(t *testing.T) {
	c, rec := newTestClient(t, nil)
	rec.Unstarted = map[int]bool{1: true}
	_, err := c.DynaconfValue(context.Background(), "API_ROOT")
	if !errors.Is(err, execx.ErrNotStarted) || errors.Is(err, ErrExecutionFailed) {
		t.Fatalf("expected a start failure, got %v", err)
	}
}

func TestDryRunPrintsInsteadOfRunning(t *testing.T) {
	c, rec := newTestClient(t, nil)
	var buf bytes.Buffer
	c.DryRun = true
	c.Stderr = &buf
	if err := c.ComposeCommand(context.Background(), []string{"up", "--build"}, true); err != nil {
		t.Fatal(err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(rec.Calls))
	}
	if !strings.HasPrefix(buf.String(), "+ podman-compose -p oci_env -f ") || !strings.Contains(buf.String(), " up --build") {
		t.Fatalf("unexpected dry-run output %q", buf.String())
	}
}

func TestDynaconfValue(t *testing.T) {
	c, rec := newTestClient(t, nil)
	rec.Output = "/api/galaxy/pulp/\n"
	got, err := c.DynaconfValue(context.Background(), "API_ROOT")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/api/galaxy/pulp/" {
		t.Fatalf("got %q", got)
	}
	argv := rec.Argvs()[0]
	want := []string{"exec", "-T", "pulp", "dynaconf", "get", "API_ROOT"}
	if tail := argv[len(argv)-len(want):]; !reflect.DeepEqual(tail, want) {
		t.Fatalf("got tail %q, want %q", tail, want)
	}
}

func pointAt(t *testing.T, c *Client, server *httptest.Server) {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatal(err)
	}
	c.Config.APIHost = host
	c.Config.APIPort = port
}

func TestPollSucceedsOnceReady(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pulp/api/v3/status/" {
			http.NotFound(w, r)
			return
		}
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, _ := newTestClient(t, nil)
	pointAt(t, c, server)
	if err := c.Poll(context.Background(), 5, time.Millisecond); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 hits, got %d", hits.Load())
	}
}

func TestPollGivesUpAfterAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, _ := newTestClient(t, nil)
	pointAt(t, c, server)
	err := c.Poll(context.Background(), 4, time.Millisecond)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if hits.Load() != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", hits.Load())
	}
}
