// Package server exposes the operator API: running matches, forced
// cancels, server pool control, the queue and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"matchbot/internal/domain"
	"matchbot/internal/lifecycle"
	"matchbot/internal/metrics"
	"matchbot/internal/middleware"
	"matchbot/internal/queue"
	"matchbot/internal/repository"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type Lifecycles interface {
	Active() []string
	Cancel(matchID string, reason lifecycle.CancelReason) error
}

type MatchStore interface {
	Get(ctx context.Context, matchID string) (*domain.Match, error)
}

type Servers interface {
	List(ctx context.Context) ([]domain.RconServer, error)
	Get(ctx context.Context, serverID int64) (*domain.RconServer, error)
	Free(ctx context.Context, serverID int64) (string, error)
}

type Queue interface {
	Snapshot() []queue.Entry
}

type AdminServer struct {
	lifecycles Lifecycles
	matches    MatchStore
	servers    Servers
	queue      Queue
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewAdminServer(lifecycles Lifecycles, matches MatchStore, servers Servers, q Queue, m *metrics.Metrics, logger zerolog.Logger) *AdminServer {
	return &AdminServer{
		lifecycles: lifecycles,
		matches:    matches,
		servers:    servers,
		queue:      q,
		metrics:    m,
		logger:     logger,
	}
}

type matchView struct {
	MatchID   string      `json:"match_id"`
	State     string      `json:"state"`
	Map       string      `json:"map,omitempty"`
	BSide     domain.Side `json:"b_side,omitempty"`
	ServerID  *int64      `json:"server_id,omitempty"`
	AScore    int         `json:"a_score"`
	BScore    int         `json:"b_score"`
	Abandoned bool        `json:"abandoned"`
	CreatedAt time.Time   `json:"created_at"`
}

type serverView struct {
	ServerID  int64  `json:"server_id"`
	Name      string `json:"name"`
	Addr      string `json:"addr"`
	Region    string `json:"region"`
	BeingUsed bool   `json:"being_used"`
	MatchID   string `json:"match_id,omitempty"`
}

type cancelRequest struct {
	Reason    string   `json:"reason"`
	Abandoned []string `json:"abandoned"`
}

func (s *AdminServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /matches", s.listMatches)
	mux.HandleFunc("POST /matches/{id}/cancel", s.cancelMatch)
	mux.HandleFunc("GET /servers", s.listServers)
	mux.HandleFunc("POST /servers/{id}/free", s.freeServer)
	mux.HandleFunc("GET /queue", s.listQueue)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return middleware.RequestID(s.logger)(c.Handler(middleware.Recover(mux)))
}

func (s *AdminServer) listMatches(w http.ResponseWriter, r *http.Request) {
	views := []matchView{}
	for _, id := range s.lifecycles.Active() {
		m, err := s.matches.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		views = append(views, matchView{
			MatchID:   m.MatchID,
			State:     m.State.String(),
			Map:       m.Map,
			BSide:     m.BSide,
			ServerID:  m.ServerID,
			AScore:    m.AScore,
			BScore:    m.BScore,
			Abandoned: m.Abandoned,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *AdminServer) cancelMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")

	var req cancelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "cancelled by an admin"
	}

	err := s.lifecycles.Cancel(matchID, lifecycle.CancelReason{Reason: req.Reason, Abandoned: req.Abandoned})
	if errors.Is(err, lifecycle.ErrNotRunning) {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("match_id", matchID).Str("reason", req.Reason).Msg("cancel requested")
	writeJSON(w, http.StatusAccepted, map[string]string{"match_id": matchID})
}

func (s *AdminServer) listServers(w http.ResponseWriter, r *http.Request) {
	servers, err := s.servers.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	views := make([]serverView, 0, len(servers))
	for _, srv := range servers {
		views = append(views, serverView{
			ServerID:  srv.ServerID,
			Name:      srv.Name,
			Addr:      srv.Host + ":" + strconv.Itoa(srv.Port),
			Region:    srv.Region,
			BeingUsed: srv.BeingUsed,
			MatchID:   srv.MatchID,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// freeServer releases a reservation left behind by a match that no longer
// runs. Servers held by a running match must be freed by cancelling it.
func (s *AdminServer) freeServer(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	srv, err := s.servers.Get(r.Context(), serverID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if srv.MatchID != "" && slices.Contains(s.lifecycles.Active(), srv.MatchID) {
		writeError(w, r, http.StatusConflict, errors.New("server is held by running match "+srv.MatchID))
		return
	}

	matchID, err := s.servers.Free(r.Context(), serverID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"server_id": serverID, "released_from": matchID})
}

func (s *AdminServer) listQueue(w http.ResponseWriter, r *http.Request) {
	entries := s.queue.Snapshot()
	if entries == nil {
		entries = []queue.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("admin request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
