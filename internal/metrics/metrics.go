// Package metrics exposes counters for the poll loop and an optional prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

var (
	Ticks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hltvlive",
		Subsystem: "poller",
		Name:      "ticks",
		Help:      "Counts poll ticks by result",
	}, []string{"result"})

	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hltvlive",
		Subsystem: "poller",
		Name:      "renders",
		Help:      "Counts render decisions by kind",
	}, []string{"kind"})

	LogEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hltvlive",
		Subsystem: "poller",
		Name:      "log_entries",
		Help:      "Counts game log entries written to the display",
	})

	Starts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hltvlive",
		Subsystem: "poller",
		Name:      "starts",
		Help:      "Counts match start attempts by result",
	}, []string{"result"})

	Running = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hltvlive",
		Subsystem: "poller",
		Name:      "running",
		Help:      "Set to 1 while a match is being polled",
	})
)

var ErrListen = errors.New("metrics listener failed")

// NewHandler returns the router serving /metrics.
func NewHandler() http.Handler {
	router := mux.NewRouter()
	router.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.Handler())
	router.NotFoundHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		slog.Debug("Unmatched metrics request", slog.String("method", request.Method), slog.String("url", request.URL.String()))
		writer.WriteHeader(http.StatusNotFound)
	})

	return router
}

// Serve listens on address until the context is cancelled.
func Serve(ctx context.Context, address string) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           NewHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown metrics listener", slog.String("error", err.Error()))
		}
	}()

	slog.Info("Starting metrics listener", slog.String("address", address))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(err, ErrListen)
	}

	return nil
}
