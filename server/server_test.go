package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrodao/govledger/app"
	"github.com/petrodao/govledger/ledgertest"
)

type fixture struct {
	t     *testing.T
	ts    *httptest.Server
	clock *app.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &app.ManualClock{}
	registry := prometheus.NewRegistry()
	ledger, err := app.NewLedger(app.Options{
		Store:    ledgertest.Store(),
		Clock:    clock,
		Logger:   slog.New(slog.DiscardHandler),
		Registry: registry,
	})
	require.NoError(t, err)
	srv := New(ledger, slog.New(slog.DiscardHandler), registry)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{t: t, ts: ts, clock: clock}
}

// call sends a JSON request and decodes the JSON response body.
func (f *fixture) call(method, path string, body interface{}) (int, map[string]interface{}) {
	f.t.Helper()
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, reqBody)
	require.NoError(f.t, err)
	resp, err := f.ts.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	if len(raw) > 0 {
		require.NoError(f.t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func (f *fixture) initAttestor(attestor string) {
	f.t.Helper()
	status, _ := f.call("POST", "/attestor/init", map[string]interface{}{
		"initial": attestor, "caller": "consortium",
	})
	require.Equal(f.t, http.StatusOK, status)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	status, body := f.call("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRevenueAPI(t *testing.T) {
	f := newFixture(t)
	f.initAttestor("alice")
	f.clock.Current = 100

	record := map[string]interface{}{
		"caller": "alice", "source_id": 7, "amount": 500000, "currency": "USD",
	}
	status, body := f.call("POST", "/revenue", record)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(0), body["id"])

	status, body = f.call("GET", "/revenue/0", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(500000), body["amount"])
	assert.Equal(t, "alice", body["recorded_by"])
	assert.Equal(t, float64(1540), body["locked_until"])

	// Same source again is a replay.
	status, body = f.call("POST", "/revenue", record)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "already recorded")

	status, body = f.call("POST", "/revenue", map[string]interface{}{
		"caller": "alice", "source_id": 8, "amount": 100, "currency": "BTC",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.call("POST", "/revenue", map[string]interface{}{
		"caller": "mallory", "source_id": 9, "amount": 100, "currency": "USD",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = f.call("GET", "/revenue/total", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(500000), body["total"])

	status, body = f.call("GET", "/revenue/used?by=alice&source_id=7", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["used"])

	release := map[string]interface{}{"caller": "alice", "recipient": "bob"}
	status, _ = f.call("POST", "/revenue/0/release", release)
	assert.Equal(t, http.StatusLocked, status)

	f.clock.Current = 1540
	status, _ = f.call("POST", "/revenue/0/release", release)
	require.Equal(t, http.StatusOK, status)

	status, body = f.call("GET", "/balance/bob", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(500000), body["balance"])

	status, _ = f.call("GET", "/revenue/0", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGovernanceAPI(t *testing.T) {
	f := newFixture(t)
	f.initAttestor("alice")
	status, _ := f.call("POST", "/revenue", map[string]interface{}{
		"caller": "alice", "source_id": 1, "amount": 1000000, "currency": "OIL",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := f.call("POST", "/proposals", map[string]interface{}{
		"caller": "carol", "amount": 300000, "description": "road repair",
	})
	require.Equal(t, http.StatusCreated, status)
	pid := fmt.Sprintf("%v", body["id"])
	require.Equal(t, "0", pid)

	status, _ = f.call("POST", "/proposals/0/disburse", map[string]interface{}{
		"caller": "carol", "recipient": "vendor",
	})
	assert.Equal(t, http.StatusConflict, status)

	for voter, choice := range map[string]bool{"carol": true, "dan": true, "erin": false} {
		status, _ = f.call("POST", "/proposals/0/votes", map[string]interface{}{
			"caller": voter, "choice": choice,
		})
		require.Equal(t, http.StatusOK, status)
	}
	status, _ = f.call("POST", "/proposals/0/votes", map[string]interface{}{
		"caller": "carol", "choice": false,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = f.call("GET", "/proposals/0/tally", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["yes"])
	assert.Equal(t, float64(1), body["no"])
	assert.Equal(t, true, body["approved"])

	status, _ = f.call("POST", "/proposals/0/disburse", map[string]interface{}{
		"caller": "carol", "recipient": "vendor",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = f.call("GET", "/balance/vendor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(300000), body["balance"])

	status, _ = f.call("POST", "/proposals/0/status", map[string]interface{}{
		"caller": "mallory", "status": "Executed",
	})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = f.call("POST", "/proposals/0/status", map[string]interface{}{
		"caller": "carol", "status": "Executed",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = f.call("GET", "/proposals/0", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Executed", body["status"])
}

func TestAuditAPI(t *testing.T) {
	f := newFixture(t)
	f.initAttestor("alice")

	status, body := f.call("GET", "/audit/count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	status, _ = f.call("POST", "/revenue", map[string]interface{}{
		"caller": "alice", "source_id": 1, "amount": 100, "currency": "USD",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = f.call("GET", "/audit/count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = f.call("GET", "/audit/0", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Revenue Recorded", body["label"])
	assert.Equal(t, "alice", body["actor"])

	status, body = f.call("GET", "/audit", nil)
	require.Equal(t, http.StatusOK, status)
	entries, ok := body["entries"].([]interface{})
	require.True(t, ok)
	assert.Len(t, entries, 1)

	status, _ = f.call("GET", "/audit/99", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAttestorAPI(t *testing.T) {
	f := newFixture(t)

	status, body := f.call("GET", "/attestor", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "not initialized")

	f.initAttestor("alice")

	status, _ = f.call("POST", "/attestor/init", map[string]interface{}{
		"initial": "bob", "caller": "consortium",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.call("POST", "/attestor/rotate", map[string]interface{}{
		"next": "bob", "caller": "mallory",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = f.call("POST", "/attestor/rotate", map[string]interface{}{
		"next": "bob", "caller": "alice",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = f.call("GET", "/attestor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bob", body["attestor"])
}

func TestMalformedRequests(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest("POST", f.ts.URL+"/proposals", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, _ := f.call("GET", "/revenue/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.call("GET", "/revenue/used?by=alice&source_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.initAttestor("alice")

	resp, err := f.ts.Client().Get(f.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "govledger_operations_total")
}
