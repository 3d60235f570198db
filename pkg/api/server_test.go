package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"elevroute/pkg/profile"
	"elevroute/pkg/route"
)

// slowMatcher blocks until ctx is done, simulating a beam search that
// runs longer than the configured request timeout.
type slowMatcher struct{}

func (slowMatcher) Match(ctx context.Context, cx, cy, radius float64, target *profile.Profile) (*route.Route, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// TestRequestTimeoutAppliesToSlowSearch checks that ServerConfig.RequestTimeout
// actually bounds a beam search that runs long, rather than the fixed 5s the
// teacher's router never needed to tune: a wide beam width against a large
// graph can legitimately take longer than that, so the timeout must be a
// configured knob, not a constant.
func TestRequestTimeoutAppliesToSlowSearch(t *testing.T) {
	handlers := NewHandlers(slowMatcher{}, StatsResponse{})
	cfg := DefaultConfigFromSearch(":0", 20*time.Millisecond)
	srv := NewServer(cfg, handlers, zap.NewNop())

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	body := `{"cx":0,"cy":0,"radius":50,"profile":[{"s":0,"z":0},{"s":150,"z":5}]}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/route", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

// TestDefaultConfigFromSearchDerivesTimeouts checks that every timeout
// field is sized to the search budget passed in, not a fixed constant.
func TestDefaultConfigFromSearchDerivesTimeouts(t *testing.T) {
	cfg := DefaultConfigFromSearch(":8080", 45*time.Second)
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cfg.RequestTimeout)
	}
	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 45s", cfg.ShutdownTimeout)
	}
	if cfg.ReadTimeout != 45*time.Second || cfg.WriteTimeout != 45*time.Second {
		t.Errorf("ReadTimeout/WriteTimeout = %v/%v, want 45s/45s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
}
