package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"elevroute/pkg/beam"
	"elevroute/pkg/profile"
	"elevroute/pkg/route"
)

// stubMatcher implements Matcher for testing.
type stubMatcher struct {
	route *route.Route
	err   error
}

func (s *stubMatcher) Match(ctx context.Context, cx, cy, radius float64, target *profile.Profile) (*route.Route, error) {
	return s.route, s.err
}

func TestHandleRoute_Success(t *testing.T) {
	stub := &stubMatcher{
		route: &route.Route{
			StartEdgeID:   1,
			StartFraction: 0.25,
			EdgeIDs:       []uint64{1, 2},
			EndFraction:   0.5,
			Length:        150,
			Offset:        2.5,
			Cost:          10,
		},
	}
	h := NewHandlers(stub, StatsResponse{NumNodes: 10})

	body := `{"cx":0,"cy":0,"radius":50,"profile":[{"s":0,"z":0},{"s":150,"z":5}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Length != 150 {
		t.Errorf("Length = %v, want 150", resp.Length)
	}
	if len(resp.EdgeIDs) != 2 {
		t.Errorf("EdgeIDs length = %d, want 2", len(resp.EdgeIDs))
	}
}

func TestHandleRoute_InvalidJSON(t *testing.T) {
	h := NewHandlers(&stubMatcher{}, StatsResponse{})

	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_MissingContentType(t *testing.T) {
	h := NewHandlers(&stubMatcher{}, StatsResponse{})

	body := `{"cx":0,"cy":0,"radius":50,"profile":[{"s":0,"z":0},{"s":150,"z":5}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_InvalidRadius(t *testing.T) {
	h := NewHandlers(&stubMatcher{}, StatsResponse{})

	body := `{"cx":0,"cy":0,"radius":-1,"profile":[{"s":0,"z":0},{"s":150,"z":5}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_NoFeasiblePath(t *testing.T) {
	stub := &stubMatcher{err: beam.ErrNoFeasiblePath}
	h := NewHandlers(stub, StatsResponse{})

	body := `{"cx":0,"cy":0,"radius":50,"profile":[{"s":0,"z":0},{"s":150,"z":5}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleRoute_Cancelled(t *testing.T) {
	stub := &stubMatcher{err: beam.ErrCancelled}
	h := NewHandlers(stub, StatsResponse{})

	body := `{"cx":0,"cy":0,"radius":50,"profile":[{"s":0,"z":0},{"s":150,"z":5}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(&stubMatcher{}, StatsResponse{})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	stats := StatsResponse{NumNodes: 500, NumEdges: 900}
	h := NewHandlers(&stubMatcher{}, stats)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var resp StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NumNodes != 500 {
		t.Errorf("NumNodes = %d, want 500", resp.NumNodes)
	}
}
