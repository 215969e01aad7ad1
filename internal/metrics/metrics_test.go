package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	pr := NewPrometheusRecorder(prom.NewRegistry())
	pr.Operation("add", ResultApplied)
	pr.Operation("add", ResultApplied)
	pr.Operation("move", ResultNoop)
	pr.Load(LoadInvalid)
	pr.Save(true)
	pr.Save(false)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.operations.WithLabelValues("add", ResultApplied)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.operations.WithLabelValues("move", ResultNoop)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.loads.WithLabelValues(LoadInvalid)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.saves.WithLabelValues("error")), 0)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	pr := NewPrometheusRecorder(nil)
	pr.Save(true)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kanboard_saves_total")
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
