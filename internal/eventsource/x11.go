package eventsource

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CommandRunner runs an external command and returns its trimmed stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

// X11Probe queries an X11 session through xdotool, ps and xprintidle.
type X11Probe struct {
	run CommandRunner
}

// NewX11Probe returns a probe that shells out through run, or through
// os/exec when run is nil.
func NewX11Probe(run CommandRunner) *X11Probe {
	if run == nil {
		run = execCommand
	}
	return &X11Probe{run: run}
}

func execCommand(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (p *X11Probe) ActiveApp(ctx context.Context) (AppIdentity, error) {
	out, err := p.run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if err != nil {
		return AppIdentity{}, err
	}
	pid, err := strconv.Atoi(out)
	if err != nil {
		return AppIdentity{}, fmt.Errorf("parsing window pid %q: %w", out, err)
	}
	name, err := p.run(ctx, "ps", "-p", strconv.Itoa(pid), "-o", "comm=")
	if err != nil {
		return AppIdentity{}, err
	}
	if name == "" {
		return AppIdentity{}, fmt.Errorf("no process name for pid %d", pid)
	}
	return AppIdentity{PID: pid, Name: name}, nil
}

// WindowTitle reads the focused window's title. Failures yield an empty title
// and no error.
func (p *X11Probe) WindowTitle(ctx context.Context, _ AppIdentity) (string, error) {
	out, err := p.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return "", nil
	}
	return out, nil
}

// IdleTime parses xprintidle's millisecond output.
func (p *X11Probe) IdleTime(ctx context.Context) (time.Duration, error) {
	out, err := p.run(ctx, "xprintidle")
	if err != nil {
		return 0, err
	}
	ms, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing idle time %q: %w", out, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
