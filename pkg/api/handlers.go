package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"elevroute/pkg/beam"
	"elevroute/pkg/profile"
	"elevroute/pkg/route"
)

// Matcher is the route-matching dependency HandleRoute calls into. The
// cmd/serve entrypoint satisfies this with a graphMatcher struct holding
// a loaded *graph.Graph and *spatial.Index; tests satisfy it with a stub.
type Matcher interface {
	Match(ctx context.Context, cx, cy, radius float64, target *profile.Profile) (*route.Route, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	matcher Matcher
	stats   StatsResponse
}

// NewHandlers creates handlers backed by the given matcher.
func NewHandlers(matcher Matcher, stats StatsResponse) *Handlers {
	return &Handlers{
		matcher: matcher,
		stats:   stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	points := make([]profile.Point, len(req.Profile))
	for i, p := range req.Profile {
		points[i] = profile.Point{S: p.S, Z: p.Z}
	}
	target, err := profile.New(points)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_profile")
		return
	}

	rt, err := h.matcher.Match(r.Context(), req.CX, req.CY, req.Radius, target)
	if err != nil {
		switch {
		case errors.Is(err, beam.ErrNoFeasiblePath):
			writeError(w, http.StatusNotFound, "no_feasible_path")
		case errors.Is(err, beam.ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout")
		case errors.Is(err, route.ErrInconsistent):
			writeError(w, http.StatusInternalServerError, "internal_error")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	resp := RouteResponse{
		StartEdgeID:   rt.StartEdgeID,
		StartFraction: rt.StartFraction,
		EdgeIDs:       rt.EdgeIDs,
		EndFraction:   rt.EndFraction,
		Length:        rt.Length,
		Offset:        rt.Offset,
		Cost:          rt.Cost,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func validateRequest(req RouteRequest) error {
	if math.IsNaN(req.CX) || math.IsNaN(req.CY) || math.IsInf(req.CX, 0) || math.IsInf(req.CY, 0) {
		return errors.New("center must be finite")
	}
	if req.Radius <= 0 || math.IsNaN(req.Radius) || math.IsInf(req.Radius, 0) {
		return errors.New("radius must be positive")
	}
	if len(req.Profile) < 2 {
		return errors.New("profile must have at least two points")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code})
}
