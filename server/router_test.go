package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ebogdum/lockd/auth"
	"github.com/ebogdum/lockd/config"
	"github.com/ebogdum/lockd/registry"
)

// newTestServer starts an httptest server around a fresh mutex registry.
func newTestServer(t *testing.T, purgeKeys []string) *httptest.Server {
	t.Helper()

	reg := registry.NewMutexRegistry()
	t.Cleanup(func() { _ = reg.Close() })

	serverCfg := config.DefaultAppConfig().Server
	router := NewRouter(reg, auth.NewAPIKeyAuthenticator(purgeKeys), &serverCfg, zap.NewNop())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body []byte, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeToken(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body.Token
}

func TestLockUnlockPurgeScenario(t *testing.T) {
	srv := newTestServer(t, nil)

	// Acquire a fresh key
	resp := post(t, srv.URL+"/lock/room1", []byte(`{"token":"tok-abc"}`), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("acquire: expected 201, got %d", resp.StatusCode)
	}

	// Release returns the stored token
	resp = post(t, srv.URL+"/unlock/room1", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("release: expected 200, got %d", resp.StatusCode)
	}
	if tok := decodeToken(t, resp); tok != "tok-abc" {
		t.Errorf("release: expected token %q, got %q", "tok-abc", tok)
	}

	// A second release is Gone
	resp = post(t, srv.URL+"/unlock/room1", nil, nil)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("second release: expected 410, got %d", resp.StatusCode)
	}

	// Re-acquire twice: the later token wins
	post(t, srv.URL+"/lock/room1", []byte(`{"token":"t1"}`), nil)
	post(t, srv.URL+"/lock/room1", []byte(`{"token":"t2"}`), nil)
	resp = post(t, srv.URL+"/unlock/room1", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("release after overwrite: expected 200, got %d", resp.StatusCode)
	}
	if tok := decodeToken(t, resp); tok != "t2" {
		t.Errorf("release after overwrite: expected %q, got %q", "t2", tok)
	}

	// Purge empties the registry
	post(t, srv.URL+"/lock/room1", []byte(`{"token":"t3"}`), nil)
	resp = post(t, srv.URL+"/purge", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("purge: expected 200, got %d", resp.StatusCode)
	}
	resp = post(t, srv.URL+"/unlock/room1", nil, nil)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("release after purge: expected 410, got %d", resp.StatusCode)
	}
}

func TestAcquireRejectsBadBodies(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body []byte
	}{
		{name: "invalid json", body: []byte(`{token`)},
		{name: "missing token field", body: []byte(`{}`)},
		{name: "empty body", body: []byte(``)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/lock/room1", tt.body, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}

	// An explicit empty token is legal
	resp := post(t, srv.URL+"/lock/room1", []byte(`{"token":""}`), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("empty token: expected 201, got %d", resp.StatusCode)
	}
}

func TestReleaseUnknownKeyGone(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/unlock/nope", nil, nil)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("expected 410, got %d", resp.StatusCode)
	}
}

func TestTokenRoundTripsThroughHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	// Token bytes must come back exactly as submitted
	token := `a "quoted" token with unicode 锁 and \\ escapes`
	payload, _ := json.Marshal(map[string]string{"token": token})

	resp := post(t, srv.URL+"/lock/doc-7", payload, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("acquire: expected 201, got %d", resp.StatusCode)
	}

	resp = post(t, srv.URL+"/unlock/doc-7", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("release: expected 200, got %d", resp.StatusCode)
	}
	if got := decodeToken(t, resp); got != token {
		t.Errorf("token did not round-trip: got %q", got)
	}
}

func TestPurgeAuthentication(t *testing.T) {
	srv := newTestServer(t, []string{"admin-key"})

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			headers:    map[string]string{"Authorization": "Bearer wrong"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid key",
			headers:    map[string]string{"Authorization": "Bearer admin-key"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/purge", nil, tt.headers)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestHealthAndStats(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}

	post(t, srv.URL+"/lock/a", []byte(`{"token":"x"}`), nil)
	post(t, srv.URL+"/lock/b", []byte(`{"token":"y"}`), nil)

	statsResp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer statsResp.Body.Close()

	var stats struct {
		Locks int `json:"locks"`
	}
	if err := json.NewDecoder(statsResp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Locks != 2 {
		t.Errorf("expected 2 locks, got %d", stats.Locks)
	}
}
