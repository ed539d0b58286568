package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atikulmunna/logsift/internal/hub"
	"github.com/atikulmunna/logsift/internal/report"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (chan<- report.Report, *hub.Hub) {
	t.Helper()
	input := make(chan report.Report)
	h := hub.New(input, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Start(ctx)
	return input, h
}

func waitLatest(t *testing.T, h *hub.Hub, runID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		rep, ok := h.Latest()
		return ok && rep.RunID == runID
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthz(t *testing.T) {
	_, h := startHub(t)
	s := New(h, "", nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["has_report"])
}

func TestReportEndpoint(t *testing.T) {
	input, h := startHub(t)
	s := New(h, "", nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	input <- report.Report{RunID: "run-1", Total: "7", Dimensions: []string{"DAY"}}
	waitLatest(t, h, "run-1")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "7", got.Total)
}

func TestWebSocketStreamsReports(t *testing.T) {
	input, h := startHub(t)
	s := New(h, "", nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	input <- report.Report{RunID: "run-1", Total: "1"}
	waitLatest(t, h, "run-1")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var first report.Report
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "run-1", first.RunID, "the latest report is sent on connect")

	input <- report.Report{RunID: "run-2", Total: "2"}
	for {
		var next report.Report
		require.NoError(t, conn.ReadJSON(&next))
		if next.RunID == "run-2" {
			assert.Equal(t, "2", next.Total)
			break
		}
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	_, h := startHub(t)
	s := New(h, "127.0.0.1:0", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
