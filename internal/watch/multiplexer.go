package watch

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Line is one line of watcher output tagged with its repository.
type Line struct {
	Repo string
	Text string
}

// Multiplexer merges the combined stdout/stderr streams of all watcher
// subprocesses onto one writer. N reader goroutines (one per repo) feed a
// shared bounded channel; exactly one writer goroutine drains it and
// prints "[repo] line". Per-repo line integrity is preserved; cross-repo
// ordering is arrival order only.
type Multiplexer struct {
	out        io.Writer
	lines      chan Line
	readers    errgroup.Group
	writerDone chan struct{}
	closeOnce  sync.Once
}

func NewMultiplexer(out io.Writer) *Multiplexer {
	m := &Multiplexer{
		out:        out,
		lines:      make(chan Line, 256),
		writerDone: make(chan struct{}),
	}
	go m.writeLoop()
	return m
}

func (m *Multiplexer) writeLoop() {
	defer close(m.writerDone)
	for line := range m.lines {
		fmt.Fprintf(m.out, "[%s] %s\n", line.Repo, line.Text)
	}
}

// Attach starts a reader that drains r line-by-line into the shared
// channel until EOF (i.e. until the subprocess exits and releases its
// pipe).
func (m *Multiplexer) Attach(repo string, r io.Reader) {
	m.readers.Go(func() error {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			m.lines <- Line{Repo: repo, Text: sc.Text()}
		}
		return sc.Err()
	})
}

// Drain waits for all readers to hit EOF, then for the writer to flush
// the remaining queued lines, bounded overall by timeout. Call after the
// watcher processes have been told to stop; output lost to the bound is
// dropped, not reordered.
func (m *Multiplexer) Drain(timeout time.Duration) error {
	readersDone := make(chan error, 1)
	go func() {
		err := m.readers.Wait()
		m.closeOnce.Do(func() { close(m.lines) })
		readersDone <- err
	}()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var err error
	select {
	case err = <-readersDone:
		select {
		case <-m.writerDone:
		case <-deadline.C:
		}
	case <-deadline.C:
	}
	return err
}
