package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Rows.WithLabelValues("kept").Add(3)

	assert.InDelta(t, 3, testutil.ToFloat64(a.Rows.WithLabelValues("kept")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Rows.WithLabelValues("kept")), 0)
}

func TestMetrics_Push(t *testing.T) {
	var (
		gotPath string
		gotBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetricsForTesting()
	m.NationalRate.Set(5)

	require.NoError(t, m.Push(context.Background(), srv.URL, "hospitalized"))

	assert.Equal(t, "/metrics/job/hospitalized", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestMetrics_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewMetricsForTesting().Push(context.Background(), srv.URL, "hospitalized")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "500"))
}
