package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"example.com/healthreport/internal/render"
)

// Watcher reports every export archive that appears or changes in a directory. Bursts of events
// for the same file are coalesced into one call after the file has been quiet for Settle.
type Watcher struct {
	dir    string
	settle time.Duration
	handle func(ctx context.Context, path string) error
	logger *log.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger for handler failures.
func WithWatchLogger(logger *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSettle sets how long a file must stay unchanged before it is handled.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.settle = d
	}
}

// NewWatcher constructs a Watcher calling handle for each settled .zip file in dir.
func NewWatcher(dir string, handle func(ctx context.Context, path string) error, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:     dir,
		settle:  2 * time.Second,
		handle:  handle,
		logger:  log.New(io.Discard, "", 0),
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. Handlers already started are waited for.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	defer w.wg.Wait()
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".zip") {
				continue
			}
			w.schedule(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watch error: %v", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}

	var t *time.Timer
	w.wg.Add(1)
	t = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.handle(ctx, path); err != nil {
			w.logger.Printf("handle %s: %v", path, err)
		}
	})
	w.pending[path] = t
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func newWatchCommand(g *globals) *cobra.Command {
	var (
		format string
		outDir string
		settle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Build a report whenever an export archive lands in DIR",
		Long: `Watch DIR and build a report for every .zip file created or rewritten there.
Each report is written to OUT/<archive name>/.

Examples:
  healthreport watch ~/Downloads --out ~/reports
  healthreport watch inbox --format csv --out reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			service, cleanup, err := g.service(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			var outMu sync.Mutex
			logger := log.New(cmd.ErrOrStderr(), "healthreport: ", log.LstdFlags)
			build := func(ctx context.Context, path string) error {
				// Settings are re-read for every archive so edits apply without a restart.
				settings, err := g.settings()
				if err != nil {
					return err
				}
				result, err := generateFromFile(ctx, service, path, settings)
				if err != nil {
					return err
				}
				name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				outMu.Lock()
				defer outMu.Unlock()
				return writeResult(out, result, f, filepath.Join(outDir, name))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(out, "watching %s\n", args[0])
			return NewWatcher(args[0], build, WithSettle(settle), WithWatchLogger(logger)).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json|yaml|csv")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write reports into")
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "Quiet period before a changed archive is read")
	return cmd
}
