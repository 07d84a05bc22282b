// Package watch manages the long-lived per-repository watch subprocesses
// and the multiplexer that merges their output.
package watch

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"repofan/internal/proxy"
)

// State is the watch subsystem lifecycle. Transitions are one-way:
// NOT_STARTED → RUNNING → STOPPING → STOPPED.
type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// terminateWait bounds the graceful SIGTERM wait per process before
// escalating to SIGKILL.
const terminateWait = 5 * time.Second

// Watcher is one running watch subprocess.
type Watcher struct {
	Repo proxy.Repo

	// Output is the combined stdout+stderr pipe, consumed by the
	// multiplexer.
	Output io.ReadCloser

	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
	// reported marks an unexpected exit already surfaced by health polls.
	reported bool
}

// Exited reports, without blocking, whether the subprocess has exited.
func (w *Watcher) Exited() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// ExitError returns the subprocess wait error. Only valid after Exited
// reports true.
func (w *Watcher) ExitError() error {
	return w.waitErr
}

// StopSummary counts per-process shutdown outcomes.
type StopSummary struct {
	Terminated int // exited after SIGTERM (or had already exited)
	Forced     int // required SIGKILL
	Errored    int // could not be signalled or killed
}

// ExitCode maps a shutdown over total processes to the watch-mode
// contract: 0 clean, 1 any forced kill, 2 partial shutdown.
func (s StopSummary) ExitCode(total int) int {
	if s.Forced > 0 {
		return 1
	}
	if s.Terminated+s.Forced+s.Errored < total || s.Errored > 0 {
		return 2
	}
	return 0
}

// Manager owns the watcher process set and the lifecycle state machine.
type Manager struct {
	exe      string
	repos    []proxy.Repo
	log      zerolog.Logger
	state    atomic.Int32
	watchers []*Watcher

	// grace is the SIGTERM wait before SIGKILL; terminateWait in
	// production, shortened by tests.
	grace time.Duration
}

func NewManager(exe string, repos []proxy.Repo, log zerolog.Logger) *Manager {
	return &Manager{exe: exe, repos: repos, log: log, grace: terminateWait}
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

// Watchers returns the successfully started watchers.
func (m *Manager) Watchers() []*Watcher {
	return m.watchers
}

// StartAll spawns one watch subprocess per repository. A repo whose
// process cannot be spawned is logged and skipped; StartAll fails only if
// zero processes started.
func (m *Manager) StartAll() error {
	for _, repo := range m.repos {
		w, err := m.spawn(repo)
		if err != nil {
			m.log.Warn().Err(err).Str("repo", repo.Name).Msg("failed to start watcher, skipping")
			continue
		}
		m.log.Debug().Str("repo", repo.Name).Int("pid", w.cmd.Process.Pid).Msg("watcher started")
		m.watchers = append(m.watchers, w)
	}

	if len(m.watchers) == 0 {
		m.state.Store(int32(StateStopped))
		return errors.New("no watcher processes could be started")
	}
	m.state.Store(int32(StateRunning))
	return nil
}

func (m *Manager) spawn(repo proxy.Repo) (*Watcher, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(m.exe, "watch")
	cmd.Dir = repo.Path
	cmd.Env = append(os.Environ(), "COLUMNS=200")
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// The child holds its own copy of the write end; closing ours makes
	// the read side hit EOF when the child exits.
	pw.Close()

	w := &Watcher{Repo: repo, Output: pr, cmd: cmd, done: make(chan struct{})}
	go func() {
		w.waitErr = cmd.Wait()
		close(w.done)
	}()
	return w, nil
}

// Unhealthy polls all watchers without blocking and returns those that
// exited while the subsystem is still RUNNING. Each unexpected exit is
// returned once; there is no auto-restart — callers surface it.
func (m *Manager) Unhealthy() []*Watcher {
	if m.State() != StateRunning {
		return nil
	}
	var out []*Watcher
	for _, w := range m.watchers {
		if w.Exited() && !w.reported {
			w.reported = true
			out = append(out, w)
		}
	}
	return out
}

// StopAll terminates every watcher: SIGTERM, a bounded graceful wait,
// then SIGKILL. Watchers are stopped concurrently so the worst case is
// one graceful-wait window, not one per repo.
func (m *Manager) StopAll() StopSummary {
	m.state.Store(int32(StateStopping))

	var mu sync.Mutex
	var summary StopSummary
	var wg sync.WaitGroup

	for _, w := range m.watchers {
		wg.Add(1)
		go func(w *Watcher) {
			defer wg.Done()
			terminated, forced, errored := m.stopOne(w)
			mu.Lock()
			defer mu.Unlock()
			if terminated {
				summary.Terminated++
			}
			if forced {
				summary.Forced++
			}
			if errored {
				summary.Errored++
			}
		}(w)
	}
	wg.Wait()

	m.state.Store(int32(StateStopped))
	return summary
}

func (m *Manager) stopOne(w *Watcher) (terminated, forced, errored bool) {
	if w.Exited() {
		return true, false, false
	}

	if err := w.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if w.Exited() {
			return true, false, false
		}
		m.log.Warn().Err(err).Str("repo", w.Repo.Name).Msg("failed to signal watcher")
		return false, false, true
	}

	select {
	case <-w.done:
		return true, false, false
	case <-time.After(m.grace):
	}

	m.log.Warn().Str("repo", w.Repo.Name).Msg("watcher ignored SIGTERM, killing")
	if err := w.cmd.Process.Kill(); err != nil {
		if w.Exited() {
			return true, false, false
		}
		return false, false, true
	}
	<-w.done
	return false, true, false
}
