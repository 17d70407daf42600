package probe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestHealthzReflectsHealthyFlag(t *testing.T) {
	reg := prometheus.NewRegistry()
	healthy := NewHealthy()
	srv := httptest.NewServer(NewServer(reg, healthy.Flag()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	healthy.Set(false)
	resp2, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
	resp2.Body.Close()
}

func TestMetricsEndpointExposesRegisteredGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Observe("HeightCheck", true)
	srv := httptest.NewServer(NewServer(reg, nil))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
