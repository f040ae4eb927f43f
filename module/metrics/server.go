package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthFunc reports whether the component behind the server is healthy.
type HealthFunc func(ctx context.Context) error

// Server is the http server serving /metrics for prometheus and /health for
// liveness probes.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a server listening on addr. The gatherer backs /metrics,
// health backs /health and may be nil.
func NewServer(log zerolog.Logger, addr string, gatherer prometheus.Gatherer, health HealthFunc) *Server {
	log = log.With().Str("component", "metrics_server").Logger()

	router := mux.NewRouter()
	router.Use(loggingMiddleware(log))
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler(health)).Methods(http.MethodGet)

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Handler returns the http handler of the server.
func (m *Server) Handler() http.Handler {
	return m.server.Handler
}

// Serve serves requests on l until ctx is canceled.
func (m *Server) Serve(ctx context.Context, l net.Listener) error {
	m.log.Info().Str("address", l.Addr().String()).Msg("metrics server started")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.server.Shutdown(shutdownCtx)
	}()

	err := m.server.Serve(l)
	// http.ErrServerClosed is returned when Close or Shutdown is called
	if errors.Is(err, http.ErrServerClosed) {
		m.log.Debug().Msg("metrics server shutdown")
		return nil
	}
	return err
}

// Run listens on the configured address and serves until ctx is canceled.
func (m *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return err
	}
	return m.Serve(ctx, l)
}

func healthHandler(health HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if health != nil {
			if err := health(r.Context()); err != nil {
				status = map[string]string{"status": "unavailable", "error": err.Error()}
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// loggingMiddleware logs the method, uri, duration and response code of each
// request.
func loggingMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			respWriter := newResponseWriter(w)
			handler.ServeHTTP(respWriter, req)

			event := logger.Debug()
			if respWriter.statusCode != http.StatusOK {
				event = logger.Warn()
			}
			event.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("client_ip", req.RemoteAddr).
				Dur("duration", time.Since(start)).
				Int("response_code", respWriter.statusCode).
				Msg("http")
		})
	}
}

// responseWriter captures the response code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
