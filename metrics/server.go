package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/core"
	"github.com/lixenwraith/gravity-wall/engine"
)

// requestTimeout bounds how long a control request waits for the wall loop
const requestTimeout = 2 * time.Second

// Controller is the slice of the wall the HTTP surface drives
type Controller interface {
	Snapshot(ctx context.Context) (engine.Status, error)
	SetScale(ctx context.Context, v float64) (float64, error)
}

// Server serves /metrics, /healthz and /scale
type Server struct {
	http *http.Server
	log  *logrus.Entry
}

type scaleResponse struct {
	Scale float64 `json:"scale"`
}

type healthResponse struct {
	Status   string  `json:"status"`
	Bodies   int     `json:"bodies"`
	Pending  int     `json:"pending"`
	Fallback bool    `json:"fallback"`
	Scale    float64 `json:"scale"`
}

// NewServer builds the router; nothing listens until Start
func NewServer(addr string, collector *Collector, ctrl Controller, log *logrus.Entry) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(collector, ctrl, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// NewRouter returns the HTTP handler tree
func NewRouter(collector *Collector, ctrl Controller, log *logrus.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		st, err := ctrl.Snapshot(req.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "ok",
			Bodies:   st.Bodies,
			Pending:  st.Pending,
			Fallback: st.Fallback,
			Scale:    st.Scale,
		})
	})

	r.Route("/scale", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			st, err := ctrl.Snapshot(req.Context())
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, err)
				return
			}
			writeJSON(w, http.StatusOK, scaleResponse{Scale: st.Scale})
		})

		r.Put("/", func(w http.ResponseWriter, req *http.Request) {
			v, err := strconv.ParseFloat(req.URL.Query().Get("value"), 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("value must be a number"))
				return
			}
			applied, err := ctrl.SetScale(req.Context(), v)
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, err)
				return
			}
			log.WithField("scale", applied).Info("scale set over http")
			writeJSON(w, http.StatusOK, scaleResponse{Scale: applied})
		})
	})

	return r
}

// Start listens in the background until ctx ends
func (s *Server) Start(ctx context.Context) {
	core.Go(func() {
		s.log.WithField("addr", s.http.Addr).Info("metrics server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("metrics server stopped")
		}
	})
	core.Go(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
