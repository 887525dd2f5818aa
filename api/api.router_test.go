package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/smartbus-iot/sensor-hub/api/middleware"
	"github.com/smartbus-iot/sensor-hub/internal/monitoring"
	"github.com/smartbus-iot/sensor-hub/internal/repository/memory"
	"github.com/smartbus-iot/sensor-hub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "device-secret"

type scriptedRelay struct {
	mu    sync.Mutex
	ok    bool
	err   error
	panic bool
	calls int
}

func (r *scriptedRelay) Send(ctx context.Context, temperature, humidity float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.panic {
		panic("relay exploded")
	}
	return r.ok, r.err
}

type testEnv struct {
	router  *Router
	repo    *memory.ReadingRepo
	relay   *scriptedRelay
	metrics *monitoring.Service
}

func newTestEnv(t *testing.T, telemetry *scriptedRelay) *testEnv {
	t.Helper()
	repo := memory.NewReadingRepository()
	svc := service.New(repo, telemetry)
	require.NoError(t, svc.Validate())

	metrics := monitoring.NewService()
	for _, event := range []string{service.EventReadingStored, service.EventRelaySent, service.EventRelayRejected, service.EventRelayFailed} {
		event := event
		require.NoError(t, svc.OnEvent(event, func(labels map[string]string) { metrics.RecordEvent(event, labels) }))
	}

	router := NewRouter(svc, metrics, RouterConfig{
		APIKey:         middleware.APIKeyConfig{Header: "X-API-Key", Key: testKey},
		AllowedOrigins: []string{"*"},
		StoreName:      "memory",
	})
	return &testEnv{router: router, repo: repo, relay: telemetry, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) ingest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/sensors/ingest", []byte(body), map[string]string{
		"X-API-Key":    testKey,
		"Content-Type": "application/json",
	})
}

func mustGetJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestIngestStoresReading(t *testing.T) {
	cases := map[string]*scriptedRelay{
		"relay acknowledged": {ok: true},
		"relay rejected":     {ok: false},
		"relay errored":      {err: fmt.Errorf("no route to host")},
	}
	for name, telemetry := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, telemetry)

			rec := env.ingest(t, `{"temperature": 25.6, "humidity": 80}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			body := mustGetJSON(t, rec)
			assert.Equal(t, "ok", body["status"])
			assert.NotEmpty(t, body["id"])
			assert.Equal(t, 1, env.repo.Count())
			assert.Equal(t, 1, env.relay.calls)
		})
	}
}

func TestIngestRejectsBadCredential(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	for _, headers := range []map[string]string{
		{},
		{"X-API-Key": "wrong"},
		{"X-API-Key": ""},
	} {
		rec := env.do(t, http.MethodPost, "/api/v1/sensors/ingest", []byte(`{"temperature": 1, "humidity": 2}`), headers)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "authentication", mustGetJSON(t, rec)["type"])
	}
	assert.Zero(t, env.repo.Count())
	assert.Zero(t, env.relay.calls)
}

func TestIngestValidation(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	for _, body := range []string{
		`not json`,
		`{"humidity": 80}`,
		`{"temperature": 25.6}`,
		`{"temperature": "warm", "humidity": 80}`,
	} {
		rec := env.ingest(t, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "validation", mustGetJSON(t, rec)["type"], body)
	}
	assert.Zero(t, env.repo.Count())
}

func TestIngestRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	padding := strings.Repeat(" ", 2<<20)
	rec := env.ingest(t, `{"temperature": 25.6,`+padding+`"humidity": 80}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := mustGetJSON(t, rec)
	assert.Equal(t, "validation", body["type"])
	assert.Equal(t, "request body too large", body["message"])
	assert.Zero(t, env.repo.Count())
}

func TestIngestStoreFailure(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})
	env.repo.FailWith(fmt.Errorf("server selection timeout"))

	rec := env.ingest(t, `{"temperature": 25.6, "humidity": 80}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := mustGetJSON(t, rec)
	assert.Equal(t, "internal", body["type"])
	assert.Contains(t, body["details"], "server selection timeout")
	assert.Zero(t, env.relay.calls)
}

func TestTestThingSpeak(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, &scriptedRelay{ok: true})

		rec := env.do(t, http.MethodGet, "/api/v1/sensors/test_thingspeak?temperature=22.5&humidity=55", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := mustGetJSON(t, rec)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, "Data sent to ThingSpeak: 22.5°C / 55%", body["message"])
		assert.Zero(t, env.repo.Count())
	})

	t.Run("rejected", func(t *testing.T) {
		env := newTestEnv(t, &scriptedRelay{ok: false})

		rec := env.do(t, http.MethodGet, "/api/v1/sensors/test_thingspeak?temperature=22.5&humidity=55", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "relay", mustGetJSON(t, rec)["type"])
	})

	t.Run("errored", func(t *testing.T) {
		env := newTestEnv(t, &scriptedRelay{err: fmt.Errorf("telemetry relay is not configured")})

		rec := env.do(t, http.MethodGet, "/api/v1/sensors/test_thingspeak?temperature=22.5&humidity=55", nil, nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, mustGetJSON(t, rec)["details"], "not configured")
	})

	t.Run("bad query", func(t *testing.T) {
		env := newTestEnv(t, &scriptedRelay{ok: true})

		for _, query := range []string{"", "?temperature=22.5", "?humidity=55", "?temperature=hot&humidity=55"} {
			rec := env.do(t, http.MethodGet, "/api/v1/sensors/test_thingspeak"+query, nil, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		}
		assert.Zero(t, env.relay.calls)
	})
}

func TestLatest(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	rec := env.do(t, http.MethodGet, "/api/v1/sensors/latest", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", mustGetJSON(t, rec)["type"])

	_, err := env.repo.InsertDocument(context.Background(), map[string]any{"humidity": 61.5})
	require.NoError(t, err)

	first := env.do(t, http.MethodGet, "/api/v1/sensors/latest", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)
	second := env.do(t, http.MethodGet, "/api/v1/sensors/latest", nil, nil)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.JSONEq(t, `{"temperatura": 0, "umidade": 61.5, "onibus": ["Bus 101", "Bus 202"]}`, first.Body.String())
}

func TestLatestStoreFailure(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})
	env.repo.FailWith(fmt.Errorf("cursor not found"))

	rec := env.do(t, http.MethodGet, "/api/v1/sensors/latest", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, mustGetJSON(t, rec)["details"], "cursor not found")
}

func TestIngestThenLatest(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	rec := env.ingest(t, `{"temperature": 25.6, "humidity": 80}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, mustGetJSON(t, rec)["id"])

	latest := env.do(t, http.MethodGet, "/api/v1/sensors/latest", nil, nil)
	require.Equal(t, http.StatusOK, latest.Code)
	assert.JSONEq(t, `{"temperatura": 25.6, "umidade": 80, "onibus": ["Bus 101", "Bus 202"]}`, latest.Body.String())

	assert.EqualValues(t, 1, env.metrics.Count(service.EventReadingStored))
	assert.EqualValues(t, 1, env.metrics.Count(service.EventRelaySent))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	rec := env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := mustGetJSON(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["store"])

	env.repo.FailWith(fmt.Errorf("connection refused"))
	rec = env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsAndDocs(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: false})
	require.Equal(t, http.StatusOK, env.ingest(t, `{"temperature": 1, "humidity": 2}`).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap monitoring.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.EqualValues(t, 1, snap.Events[service.EventReadingStored])
	assert.EqualValues(t, 1, snap.Events[service.EventRelayRejected])
	assert.Zero(t, snap.Events[service.EventRelaySent])

	rec = env.do(t, http.MethodGet, "/api/v1/swagger.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := mustGetJSON(t, rec)
	assert.Equal(t, "/api/v1", doc["basePath"])
	assert.Contains(t, doc["paths"], "/sensors/ingest")
}

func TestPanicIsRecovered(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{panic: true})

	rec := env.do(t, http.MethodGet, "/api/v1/sensors/test_thingspeak?temperature=1&humidity=2", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, &scriptedRelay{ok: true})

	rec := env.do(t, http.MethodOptions, "/api/v1/sensors/ingest", nil, map[string]string{
		"Origin":                        "http://dashboard.local",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, env.repo.Count())
}
