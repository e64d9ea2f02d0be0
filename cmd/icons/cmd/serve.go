package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	iconerrors "github.com/go-drift/icons/pkg/errors"
	"github.com/go-drift/icons/pkg/icon"
	"github.com/go-drift/icons/pkg/manager"
	"github.com/go-drift/icons/pkg/svg"
)

func init() {
	RegisterCommand(&Command{
		Name:  "serve",
		Short: "Serve icons over HTTP",
		Long: `Serve icons as standalone SVG documents.

Routes:
  GET /{prefix}/{name}.svg   Rendered icon; query parameters become attributes
  GET /prefixes              Registered prefixes as JSON
  GET /healthz               Liveness check

Malformed names answer 400 and unknown icons 404.`,
		Usage: "icons serve [--addr ADDR] [--verbose]",
		Run:   runServe,
	})
}

const svgNamespace = "http://www.w3.org/2000/svg"

func runServe(args []string) error {
	addr := ":8080"
	verbose := false
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--addr":
			if i+1 >= len(args) {
				return fmt.Errorf("--addr requires a value")
			}
			addr = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--addr="):
			addr = strings.TrimPrefix(args[i], "--addr=")
		case args[i] == "--verbose":
			verbose = true
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	iconerrors.SetHandler(&iconerrors.LogHandler{Logger: logger, Verbose: verbose})

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(p.manager, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving icons", slog.String("addr", addr), slog.Any("prefixes", p.manager.Prefixes()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServer(m *manager.Manager, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/prefixes", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.Prefixes())
	})

	r.Get("/{prefix}/*", func(w http.ResponseWriter, req *http.Request) {
		local, ok := strings.CutSuffix(chi.URLParam(req, "*"), ".svg")
		if !ok {
			http.NotFound(w, req)
			return
		}
		name := chi.URLParam(req, "prefix") + ":" + local

		ic, err := m.Get(name, queryAttributes(req))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if !ic.Attributes().Has("xmlns") {
			ic = ic.WithAttrs(icon.NewAttributes("xmlns", svgNamespace))
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write([]byte(ic.ToMarkup()))
	})

	return r
}

// queryAttributes turns ?class=x&width=24 into attributes, sorted by name.
// Event handlers are dropped and javascript: values rewritten.
func queryAttributes(req *http.Request) icon.Attributes {
	query := req.URL.Query()
	var attrs icon.Attributes
	for _, name := range slices.Sorted(maps.Keys(query)) {
		value, ok := svg.SafeAttr(name, query.Get(name))
		if !ok {
			continue
		}
		attrs = attrs.With(name, value)
	}
	return attrs
}

func statusFor(err error) int {
	switch iconerrors.KindOf(err) {
	case iconerrors.KindInvalidName:
		return http.StatusBadRequest
	case iconerrors.KindIconNotFound, iconerrors.KindProviderNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// recoverer reports handler panics to the error handler and answers 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer iconerrors.RecoverWithCallback("serve "+r.URL.Path, func(any) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
		next.ServeHTTP(w, r)
	})
}
