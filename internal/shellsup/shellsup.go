// Package shellsup supervises background shell commands: it spawns a
// child via the system shell, streams its stdout/stderr into bounded
// line rings, and tracks lifecycle status so tools can poll output
// incrementally instead of blocking on completion.
package shellsup

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RingCapacity is the maximum number of lines retained per stream.
// Beyond this, the oldest line is evicted to admit the newest.
const RingCapacity = 10000

// Status is the lifecycle state of a background shell.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stream identifies which ring a line belongs to.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// killedExitCode is reported for shells terminated via Kill, matching
// the conventional 128+SIGKILL(9) shell exit status.
const killedExitCode = 137

// ring is a fixed-capacity FIFO line buffer. Offsets are monotonic over
// the ring's lifetime: dropped index tracks how many lines have been
// evicted so callers can detect a stale offset without panicking.
type ring struct {
	lines   []string
	dropped int
}

func (r *ring) push(line string) {
	r.lines = append(r.lines, line)
	if len(r.lines) > RingCapacity {
		r.lines = r.lines[1:]
		r.dropped++
	}
}

// totalLen is the total number of lines ever pushed, dropped or not.
func (r *ring) totalLen() int {
	return r.dropped + len(r.lines)
}

// since returns lines at positions [offset, end) of the logical
// (never-evicted) sequence. Best effort: an offset referring to an
// already-evicted line is clamped forward rather than erroring.
func (r *ring) since(offset int) ([]string, int) {
	end := r.totalLen()
	if offset >= end {
		return nil, end
	}
	if offset < r.dropped {
		offset = r.dropped
	}
	start := offset - r.dropped
	out := make([]string, len(r.lines[start:]))
	copy(out, r.lines[start:])
	return out, end
}

// Shell is a single supervised background command.
type Shell struct {
	ID        string
	Command   string
	StartedAt time.Time

	mu       sync.Mutex
	status   Status
	exitCode *int
	failure  string

	stdout ring
	stderr ring

	cancel context.CancelFunc
	cmd    *exec.Cmd
}

// Summary is a point-in-time snapshot of a shell's status for reporting.
type Summary struct {
	ID          string
	Command     string
	Status      Status
	ExitCode    *int
	StdoutLines int
	StderrLines int
	UptimeSecs  float64
}

func (s *Shell) snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		ID:          s.ID,
		Command:     s.Command,
		Status:      s.status,
		ExitCode:    s.exitCode,
		StdoutLines: s.stdout.totalLen(),
		StderrLines: s.stderr.totalLen(),
		UptimeSecs:  time.Since(s.StartedAt).Seconds(),
	}
}

// Supervisor owns a set of background shells keyed by id.
type Supervisor struct {
	mu     sync.Mutex
	shells map[string]*Shell
}

// New creates an empty supervisor.
func New() *Supervisor {
	return &Supervisor{shells: make(map[string]*Shell)}
}

// Spawn starts command via the system shell in workingDir and returns its
// supervised id immediately; the command runs asynchronously.
func (sup *Supervisor) Spawn(command, workingDir string) (string, error) {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = workingDir

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return "", fmt.Errorf("shellsup: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return "", fmt.Errorf("shellsup: stderr pipe: %w", err)
	}
	cmd.Stdin = nil

	sh := &Shell{
		ID:        id,
		Command:   command,
		StartedAt: time.Now(),
		status:    StatusRunning,
		cancel:    cancel,
		cmd:       cmd,
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return "", fmt.Errorf("shellsup: start: %w", err)
	}

	sup.mu.Lock()
	sup.shells[id] = sh
	sup.mu.Unlock()

	var readers sync.WaitGroup
	readers.Add(2)
	go sh.readLines(&readers, stdoutPipe, Stdout)
	go sh.readLines(&readers, stderrPipe, Stderr)

	go func() {
		readers.Wait()
		err := cmd.Wait()
		sh.finish(err)
	}()

	return id, nil
}

func (sh *Shell) readLines(wg *sync.WaitGroup, r interface{ Read([]byte) (int, error) }, stream Stream) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		sh.mu.Lock()
		switch stream {
		case Stdout:
			sh.stdout.push(scanner.Text())
		case Stderr:
			sh.stderr.push(scanner.Text())
		}
		sh.mu.Unlock()
	}
}

func (sh *Shell) finish(waitErr error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.status != StatusRunning {
		return
	}
	if waitErr == nil {
		code := 0
		sh.exitCode = &code
		sh.status = StatusCompleted
		return
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		sh.exitCode = &code
		sh.status = StatusCompleted
		return
	}
	sh.status = StatusFailed
	sh.failure = waitErr.Error()
}

// Status returns the cached status for id without blocking.
func (sup *Supervisor) Status(id string) (Summary, bool) {
	sup.mu.Lock()
	sh, ok := sup.shells[id]
	sup.mu.Unlock()
	if !ok {
		return Summary{}, false
	}
	return sh.snapshot(), true
}

// LinesSince returns lines at [offset, end) of the given stream's ring,
// plus the new end offset callers should pass next time.
func (sup *Supervisor) LinesSince(id string, stream Stream, offset int) ([]string, int, bool) {
	sup.mu.Lock()
	sh, ok := sup.shells[id]
	sup.mu.Unlock()
	if !ok {
		return nil, 0, false
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	switch stream {
	case Stdout:
		lines, end := sh.stdout.since(offset)
		return lines, end, true
	case Stderr:
		lines, end := sh.stderr.since(offset)
		return lines, end, true
	default:
		return nil, 0, false
	}
}

// Kill forcefully terminates id. Idempotent on an already-terminal shell.
func (sup *Supervisor) Kill(id string) bool {
	sup.mu.Lock()
	sh, ok := sup.shells[id]
	sup.mu.Unlock()
	if !ok {
		return false
	}
	sh.mu.Lock()
	alreadyTerminal := sh.status != StatusRunning
	sh.mu.Unlock()
	if alreadyTerminal {
		return true
	}
	sh.cancel()
	if sh.cmd.Process != nil {
		_ = sh.cmd.Process.Kill()
	}
	sh.mu.Lock()
	if sh.status == StatusRunning {
		code := killedExitCode
		sh.exitCode = &code
		sh.status = StatusCompleted
	}
	sh.mu.Unlock()
	return true
}

// CleanupFinished removes every shell whose status is terminal and
// returns the count removed.
func (sup *Supervisor) CleanupFinished() int {
	sup.mu.Lock()
	defer sup.mu.Unlock()
	removed := 0
	for id, sh := range sup.shells {
		sh.mu.Lock()
		terminal := sh.status != StatusRunning
		sh.mu.Unlock()
		if terminal {
			delete(sup.shells, id)
			removed++
		}
	}
	return removed
}

// Summary returns a snapshot of every supervised shell.
func (sup *Supervisor) Summary() []Summary {
	sup.mu.Lock()
	ids := make([]*Shell, 0, len(sup.shells))
	for _, sh := range sup.shells {
		ids = append(ids, sh)
	}
	sup.mu.Unlock()

	out := make([]Summary, len(ids))
	for i, sh := range ids {
		out[i] = sh.snapshot()
	}
	return out
}

// Close kills every running shell, releasing all OS handles. Call on
// supervisor teardown so dropping it never leaves orphaned children.
func (sup *Supervisor) Close() {
	sup.mu.Lock()
	ids := make([]string, 0, len(sup.shells))
	for id := range sup.shells {
		ids = append(ids, id)
	}
	sup.mu.Unlock()
	for _, id := range ids {
		sup.Kill(id)
	}
}
