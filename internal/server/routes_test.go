// internal/server/routes_test.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/register-poller/internal/config"
	"github.com/tamzrod/register-poller/internal/decoder"
	"github.com/tamzrod/register-poller/internal/poller"
	"github.com/tamzrod/register-poller/internal/status"
	"github.com/tamzrod/register-poller/internal/writer"
)

func newTestServer() (*Server, *status.Tracker, *writer.Latest) {
	tr := status.NewTracker()
	l := writer.NewLatest()
	return &Server{unitID: "heatpump", tracker: tr, latest: l}, tr, l
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	s, tr, _ := newTestServer()
	h := s.RegisterRoutes()

	rec := get(t, h, "/healthcheck")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	tr.Observe(poller.PollResult{At: time.Now()})
	rec = get(t, h, "/healthcheck")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "health_check: OK", rec.Body.String())

	tr.Observe(poller.PollResult{Err: errors.New("timeout")})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/healthcheck").Code)
}

func TestStatus(t *testing.T) {
	s, tr, _ := newTestServer()
	tr.Observe(poller.PollResult{Err: &poller.TransportFailure{Err: errors.New("crc")}})
	tr.Tick()

	rec := get(t, s.RegisterRoutes(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "heatpump", got["device"])
	assert.Equal(t, "error", got["state"])
	assert.Equal(t, float64(status.CodeTransport), got["last_error_code"])
	assert.Equal(t, float64(1), got["seconds_in_error"])
	assert.Equal(t, float64(1), got["failures"])
}

func TestReadings(t *testing.T) {
	s, _, latest := newTestServer()
	h := s.RegisterRoutes()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/readings").Code)

	require.NoError(t, latest.Write(poller.PollResult{
		UnitID: "heatpump",
		At:     time.Now(),
		Fields: []decoder.DecodedField{
			{Address: 0x0E, Name: "Inlet water temperature", Value: decoder.ScaledNumber(21.5), Unit: "°C"},
		},
	}))

	rec := get(t, h, "/readings")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Device string `json:"device"`
		Fields []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "heatpump", got.Device)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, 21.5, got.Fields[0].Value)
}

func TestNewServer(t *testing.T) {
	cfg := config.Config{HTTP: config.HTTPConfig{Enabled: true, Port: 9090}}
	srv := NewServer(cfg, status.NewTracker(), writer.NewLatest())
	assert.Equal(t, ":9090", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
