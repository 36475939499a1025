package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StageCommand describes one stage process to launch.
type StageCommand struct {
	// Script is the absolute path of the stage script.
	Script string

	// Dir is the working directory for the process, the topic directory,
	// so relative artifact paths inside scripts resolve against it.
	Dir string
}

// StageOutcome is the complete captured result of one stage process.
type StageOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Output returns the combined captured output for diagnostics.
func (o StageOutcome) Output() string {
	out := o.Stdout
	if o.Stderr != "" {
		if out != "" {
			out += "\n"
		}
		out += o.Stderr
	}
	return out
}

// StageLauncher runs one stage process to completion. Implementations
// must never apply a timeout of their own; cancellation comes from ctx.
type StageLauncher interface {
	Launch(ctx context.Context, cmd StageCommand) (StageOutcome, error)
}

// LocalLauncher runs stage scripts as local subprocesses. The interpreter
// for a script is chosen by file extension; unknown extensions are an
// immediate error rather than a shell guess.
type LocalLauncher struct {
	// Interpreters maps a file extension (".py") to the interpreter argv
	// prefix the script path is appended to.
	Interpreters map[string][]string

	logger zerolog.Logger
}

// DefaultInterpreters is the built-in extension map, overridable through
// configuration.
func DefaultInterpreters() map[string][]string {
	return map[string][]string{
		".py": {"python3"},
		".sh": {"sh"},
	}
}

// NewLocalLauncher creates a launcher with the given interpreter map; a
// nil map selects the defaults.
func NewLocalLauncher(interpreters map[string][]string, logger zerolog.Logger) *LocalLauncher {
	if interpreters == nil {
		interpreters = DefaultInterpreters()
	}
	return &LocalLauncher{
		Interpreters: interpreters,
		logger:       logger.With().Str("component", "launcher").Logger(),
	}
}

// Launch runs the stage script and captures stdout and stderr in full,
// concurrently, so a chatty script can never block on a full pipe. The
// exit code is reported in the outcome, not as an error; an error means
// the process could not be run at all.
func (l *LocalLauncher) Launch(ctx context.Context, sc StageCommand) (StageOutcome, error) {
	ext := filepath.Ext(sc.Script)
	prefix, ok := l.Interpreters[ext]
	if !ok {
		return StageOutcome{}, fmt.Errorf("no interpreter configured for %q scripts", ext)
	}

	argv := append(append([]string{}, prefix...), sc.Script)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = sc.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return StageOutcome{}, fmt.Errorf("opening stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return StageOutcome{}, fmt.Errorf("opening stderr pipe: %w", err)
	}

	l.logger.Info().Str("script", sc.Script).Strs("argv", argv).Msg("launching stage")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return StageOutcome{}, fmt.Errorf("starting stage %s: %w", sc.Script, err)
	}

	var outBuf, errBuf bytes.Buffer
	g := new(errgroup.Group)
	g.Go(func() error { return drain(&outBuf, stdout) })
	g.Go(func() error { return drain(&errBuf, stderr) })
	if err := g.Wait(); err != nil {
		_ = cmd.Wait()
		return StageOutcome{}, fmt.Errorf("capturing stage output: %w", err)
	}

	outcome := StageOutcome{
		Stdout: strings.TrimRight(outBuf.String(), "\n"),
		Stderr: strings.TrimRight(errBuf.String(), "\n"),
	}
	err = cmd.Wait()
	outcome.Duration = time.Since(start)
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return StageOutcome{}, fmt.Errorf("waiting for stage %s: %w", sc.Script, err)
		}
		outcome.ExitCode = exitErr.ExitCode()
	}

	l.logger.Info().Str("script", sc.Script).Int("exit_code", outcome.ExitCode).
		Dur("duration", outcome.Duration).Msg("stage finished")
	return outcome, nil
}

func drain(dst *bytes.Buffer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}
