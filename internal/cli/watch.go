package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"repofan/internal/diagnose"
	"repofan/internal/proxy"
	"repofan/internal/watch"
)

// drainWait bounds how long shutdown waits for queued watcher output to
// flush after the processes have been stopped.
const drainWait = 2 * time.Second

// healthTick is how often the main loop polls watcher health and the
// cancellation flag.
const healthTick = time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run per-repository watch processes with multiplexed output",
	Long: `Start one long-lived "watch" subprocess per member repository and
multiplex their output onto stdout as "[repo] line".

Repositories whose watcher cannot be started are skipped; the command
fails only if no watcher starts at all. A watcher that exits on its own is
reported but not restarted.

Press Ctrl-C once for a graceful shutdown (terminate watchers, flush
remaining output); a second Ctrl-C exits immediately.

Exit codes:
	0 = all watchers stopped cleanly
	1 = at least one watcher had to be force-killed
	2 = partial shutdown (some watchers unaccounted for or errored)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repos, log, code := loadProxy()
		if code != 0 {
			os.Exit(code)
		}
		os.Exit(runWatch(repos, log))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(repos []proxy.Repo, log zerolog.Logger) int {
	mgr := watch.NewManager(cfg.Proxy.Exe, repos, log)
	if err := mgr.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	mux := watch.NewMultiplexer(os.Stdout)
	for _, w := range mgr.Watchers() {
		mux.Attach(w.Repo.Name, w.Output)
	}
	fmt.Fprintf(os.Stderr, "Watching %d of %d repositories (Ctrl-C to stop)\n", len(mgr.Watchers()), len(repos))

	// Explicit cancellation token: set once by the signal handler, polled
	// by the tick loop. A second signal forces immediate exit, bypassing
	// cleanup.
	var stopping atomic.Bool
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		stopping.Store(true)
		<-sigCh
		os.Exit(130)
	}()

	tick := time.NewTicker(healthTick)
	defer tick.Stop()
	for !stopping.Load() {
		<-tick.C
		for _, w := range mgr.Unhealthy() {
			fmt.Fprintln(os.Stderr, diagnose.FailureLine(w.Repo.Name, "watcher exited unexpectedly"))
		}
	}

	fmt.Fprintln(os.Stderr, "Stopping watchers...")
	summary := mgr.StopAll()
	if err := mux.Drain(drainWait); err != nil {
		log.Debug().Err(err).Msg("watcher output drain reported an error")
	}

	total := len(mgr.Watchers())
	fmt.Fprintf(os.Stderr, "Stopped: %d terminated, %d forced, %d errors (of %d)\n",
		summary.Terminated, summary.Forced, summary.Errored, total)
	return summary.ExitCode(total)
}
