// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"rough/internal/logger"
	"rough/internal/util"
)

// BuildFunc rebuilds the site into the served directory.
type BuildFunc func() error

type Options struct {
	// SrcDir is watched recursively.
	SrcDir string
	// OutDir is served over HTTP. Changes under it never trigger a rebuild.
	OutDir string
	Port   int
	// Debounce is the quiet period after the last change before a rebuild
	// starts. Zero means 500ms.
	Debounce time.Duration
	Logger   *slog.Logger
}

const (
	defaultDebounce = 500 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Run builds once, then serves OutDir with live reload and rebuilds on every
// change under SrcDir until ctx is cancelled.
func Run(ctx context.Context, opts Options, build BuildFunc) error {
	log := logger.OrNop(opts.Logger)
	if err := build(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	outAbs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return err
	}
	ws := &watchSet{watcher: watcher, watched: make(map[string]bool), skip: outAbs, log: log}
	if err := ws.addTree(opts.SrcDir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", opts.SrcDir, err)
	}

	hub := newHub(log)
	delay := opts.Debounce
	if delay <= 0 {
		delay = defaultDebounce
	}
	go watchForChanges(ctx, ws, hub, build, &debouncer{delay: delay}, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           newHandler(opts.OutDir, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("serving site", slog.String("url", fmt.Sprintf("http://localhost:%d", opts.Port)), logger.Path(opts.OutDir))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newHandler(outDir string, hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.serveWs)
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(outDir))))
	return mux
}

// watchSet tracks the directories added to the watcher.
type watchSet struct {
	watcher *fsnotify.Watcher
	watched map[string]bool
	// absolute path of the output directory, never watched
	skip string
	log  *slog.Logger
}

// addTree watches root and every directory below it, except the output
// directory.
func (w *watchSet) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if util.IsWithin(path, w.skip) {
			return filepath.SkipDir
		}
		w.add(path)
		return nil
	})
}

func (w *watchSet) add(dir string) {
	dir = filepath.Clean(dir)
	if w.watched[dir] {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.log.Warn("could not watch directory", logger.Path(dir), logger.Error(err))
		return
	}
	w.log.Debug("watching directory", logger.Path(dir))
	w.watched[dir] = true
}

// shouldRebuild reports whether ev is a change to the site source. Editors
// save through create, write, remove or rename, so all four count.
func shouldRebuild(ev fsnotify.Event, outDir string) bool {
	if util.IsWithin(ev.Name, outDir) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// debouncer fires once delay has passed since the last trigger, so a burst
// of saves yields one rebuild that sees the final state.
type debouncer struct {
	delay time.Duration
	timer *time.Timer
}

func (d *debouncer) trigger() {
	if d.timer == nil {
		d.timer = time.NewTimer(d.delay)
		return
	}
	d.timer.Reset(d.delay)
}

// fired delivers when the pending trigger is due. It is nil before the
// first trigger.
func (d *debouncer) fired() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}

func watchForChanges(ctx context.Context, ws *watchSet, hub *Hub, build BuildFunc, deb *debouncer, log *slog.Logger) {
	defer deb.stop()
	var changed string
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ws.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := ws.addTree(ev.Name); err != nil {
						log.Warn("could not watch new directory", logger.Path(ev.Name), logger.Error(err))
					}
				}
			}
			if shouldRebuild(ev, ws.skip) {
				changed = ev.Name
				deb.trigger()
			}
		case <-deb.fired():
			log.Info("change detected, rebuilding", logger.Path(changed))
			if err := build(); err != nil {
				log.Error("rebuild failed", logger.Error(err))
			} else {
				hub.broadcast([]byte("reload"))
			}
		case err, ok := <-ws.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", logger.Error(err))
		}
	}
}

// liveReloadWrapper disables caching and injects the reload script before
// </body> in successful HTML responses.
func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter()
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		body := iw.body.Bytes()
		if iw.statusCode == http.StatusOK {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(iw.statusCode)
		_, _ = w.Write(body)
	})
}

// interceptingWriter buffers a response so it can be rewritten.
type interceptingWriter struct {
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter() *interceptingWriter {
	return &interceptingWriter{
		body:       new(bytes.Buffer),
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header { return iw.header }

func (iw *interceptingWriter) Write(b []byte) (int, error) { return iw.body.Write(b) }

func (iw *interceptingWriter) WriteHeader(statusCode int) { iw.statusCode = statusCode }

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'rough serve'.");
    };
  })();
</script>
`
