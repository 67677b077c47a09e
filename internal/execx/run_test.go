package execx

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestQuote(t *testing.T) {
	cases := []struct {
		name string
		argv []string
		want string
	}{
		{name: "plain", argv: []string{"docker", "compose", "ps"}, want: "docker compose ps"},
		{name: "space", argv: []string{"echo", "hello world"}, want: "echo 'hello world'"},
		{name: "empty", argv: []string{"echo", ""}, want: "echo ''"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Quote(tc.argv); got != tc.want {
				t.Fatalf("Quote(%q) = %q, want %q", tc.argv, got, tc.want)
			}
		})
	}
}

func TestOSRunnerExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	res := OSRunner{}.Run(context.Background(), Cmd{Name: "sh", Args: []string{"-c", "exit 3"}})
	if res.Code != 3 {
		t.Fatalf("expected exit code 3, got %d (err=%v)", res.Code, res.Err)
	}
	if res.OK() {
		t.Fatal("expected non-OK result")
	}
}

func TestOSRunnerCapture(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, res := OSRunner{}.Capture(context.Background(), Cmd{Name: "sh", Args: []string{"-c", "printf %s \"$GREETING\""}, Env: []string{"GREETING=hi"}})
	if !res.OK() {
		t.Fatalf("capture failed: %v", res.Err)
	}
	if out != "hi" {
		t.Fatalf("expected %q, got %q", "hi", out)
	}
}

func TestOSRunnerMissingBinary(t *testing.T) {
	res := OSRunner{}.Run(context.Background(), Cmd{Name: "definitely-not-a-real-binary-oci"})
	if res.Code != 1 || res.Err == nil {
		t.Fatalf("expected code 1 with error, got %+v", res)
	}
	if !errors.Is(res.Err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", res.Err)
	}
}

func TestOSRunnerNonZeroExitIsStarted(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	res := OSRunner{}.Run(context.Background(), Cmd{Name: "sh", Args: []string{"-c", "exit 1"}})
	if errors.Is(res.Err, ErrNotStarted) {
		t.Fatalf("a process that ran must not be reported as unstarted: %v", res.Err)
	}
}

func TestOSRunnerCancelInterrupts(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()
	script := "trap 'exit 7' INT; while :; do sleep 0.1; done"
	res := OSRunner{}.Run(ctx, Cmd{Name: "sh", Args: []string{"-c", script}, Stdin: strings.NewReader("")})
	if res.Code != 7 {
		t.Fatalf("expected the SIGINT trap to exit 7, got %d (err=%v)", res.Code, res.Err)
	}
}
