package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return path
}

func TestLaunchCapturesBothStreams(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "stage.sh", "echo out\necho err >&2\n")
	launcher := NewLocalLauncher(nil, zerolog.Nop())

	outcome, err := launcher.Launch(context.Background(), StageCommand{Script: script, Dir: dir})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("Expected exit 0, got %d", outcome.ExitCode)
	}
	if outcome.Stdout != "out" || outcome.Stderr != "err" {
		t.Errorf("Unexpected streams: stdout=%q stderr=%q", outcome.Stdout, outcome.Stderr)
	}
	if outcome.Output() != "out\nerr" {
		t.Errorf("Unexpected combined output: %q", outcome.Output())
	}
}

func TestLaunchReportsExitCodeInOutcome(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "stage.sh", "echo failing\nexit 3\n")
	launcher := NewLocalLauncher(nil, zerolog.Nop())

	outcome, err := launcher.Launch(context.Background(), StageCommand{Script: script, Dir: dir})
	if err != nil {
		t.Fatalf("Expected a non-zero exit to be an outcome, not an error, got: %v", err)
	}
	if outcome.ExitCode != 3 {
		t.Errorf("Expected exit 3, got %d", outcome.ExitCode)
	}
	if outcome.Stdout != "failing" {
		t.Errorf("Expected output captured before exit, got %q", outcome.Stdout)
	}
}

func TestLaunchRunsInGivenDirectory(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "stage.sh", "pwd\n")
	launcher := NewLocalLauncher(nil, zerolog.Nop())

	outcome, err := launcher.Launch(context.Background(), StageCommand{Script: script, Dir: dir})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got, _ := filepath.EvalSymlinks(outcome.Stdout); got != resolved {
		t.Errorf("Expected working directory %q, got %q", resolved, outcome.Stdout)
	}
}

func TestLaunchRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "stage.rb", "puts 1\n")
	launcher := NewLocalLauncher(nil, zerolog.Nop())

	_, err := launcher.Launch(context.Background(), StageCommand{Script: script, Dir: dir})
	if err == nil {
		t.Fatal("Expected error for unconfigured extension")
	}
}

func TestLaunchHonorsConfiguredInterpreters(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "stage.custom", "echo custom\n")
	launcher := NewLocalLauncher(map[string][]string{".custom": {"sh"}}, zerolog.Nop())

	outcome, err := launcher.Launch(context.Background(), StageCommand{Script: script, Dir: dir})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if outcome.Stdout != "custom" {
		t.Errorf("Unexpected output: %q", outcome.Stdout)
	}
}
