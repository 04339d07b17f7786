package gohttpd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hollis-cloud/pyxis/datastore"
	"github.com/hollis-cloud/pyxis/httpd"
	"github.com/hollis-cloud/pyxis/menu"
	"github.com/hollis-cloud/pyxis/metrics"
	"github.com/hollis-cloud/pyxis/types"
)

// recentEventLimit caps the boot events shown on /status.
const recentEventLimit = 50

// GoHTTPd serves the boot script, the boot assets and the status API.
type GoHTTPd struct {
	addr    string
	script  []byte
	targets map[string]bool
	files   http.FileSystem
	ds      datastore.Datastore
	logger  *zap.Logger
}

// New is
func New(addr string, m *menu.Menu, baseURL string, files http.FileSystem, ds datastore.Datastore, logger *zap.Logger) (httpd.HTTPd, error) {
	script, err := m.Render(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render boot script: %w", err)
	}

	targets := make(map[string]bool, len(m.Entries))
	for _, entry := range m.Entries {
		targets[entry.Name] = true
	}

	return &GoHTTPd{
		addr:    addr,
		script:  script,
		targets: targets,
		files:   files,
		ds:      ds,
		logger:  logger,
	}, nil
}

// Serve is
func (g *GoHTTPd) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    g.addr,
		Handler: g.mux(),
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return ctx.Err()
}

func (g *GoHTTPd) mux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", g.loggingHandler(http.FileServer(g.files)))
	mux.Handle("/boot.ipxe", g.loggingHandler(g.scriptHandler()))
	mux.Handle("/booted", g.loggingHandler(g.bootedHandler()))
	mux.Handle("/status", g.loggingHandler(g.statusHandler()))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// statusRecorder remembers the response code so large file transfers can
// be logged without buffering their bodies.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (g *GoHTTPd) loggingHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.logger.Info("http request log", zap.String("url", r.URL.String()), zap.String("remote", r.RemoteAddr))
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		handler.ServeHTTP(rec, r)
		g.logger.Info("http response log", zap.String("url", r.URL.String()), zap.Int("code", rec.code))
	})
}

func (g *GoHTTPd) scriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rawMAC := r.URL.Query().Get("mac"); rawMAC != "" {
			mac, err := net.ParseMAC(rawMAC)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if _, err := g.ds.EnsureMachine(r.Context(), types.HardwareAddr(mac), datastore.ViaHTTP); err != nil {
				g.logger.Error("failed to record machine", zap.Error(err))
			} else if _, err := g.ds.RecordBootEvent(r.Context(), types.HardwareAddr(mac), "", datastore.EventScript); err != nil {
				g.logger.Error("failed to record boot event", zap.Error(err))
			}
		}

		metrics.BootScripts.Inc()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(g.script)
	})
}

func (g *GoHTTPd) bootedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("target")
		if !g.targets[target] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mac, err := net.ParseMAC(r.URL.Query().Get("mac"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if _, err := g.ds.EnsureMachine(r.Context(), types.HardwareAddr(mac), datastore.ViaHTTP); err != nil {
			g.logger.Error("failed to record machine", zap.Error(err))
		}
		if _, err := g.ds.RecordBootEvent(r.Context(), types.HardwareAddr(mac), target, datastore.EventBoot); err != nil {
			g.logger.Error("failed to record boot event", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		metrics.BootReports.Inc()
		fmt.Fprintf(w, "# booting %s\n", target)
	})
}

type status struct {
	Machines []httpd.Machine   `json:"machines"`
	Events   []httpd.BootEvent `json:"events"`
}

func (g *GoHTTPd) statusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		machines, err := g.ds.ListMachines(r.Context())
		if err != nil {
			g.logger.Error("failed to list machines", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		events, err := g.ds.RecentBootEvents(r.Context(), recentEventLimit)
		if err != nil {
			g.logger.Error("failed to list boot events", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status{Machines: machines, Events: events}); err != nil {
			g.logger.Error("failed to encode status", zap.Error(err))
		}
	})
}

var _ httpd.HTTPd = &GoHTTPd{}
