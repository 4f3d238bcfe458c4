package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Instrument())
	r.GET("/arts/detail/:artId", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/arts/detail/:artId", "200"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/arts/detail/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/arts/detail/:artId", "200"))

	assert.Equal(t, 2.0, after-before)
}

func TestRecordArtEvent(t *testing.T) {
	before := testutil.ToFloat64(artEvents.WithLabelValues(EventLike))
	RecordArtEvent(EventLike)
	assert.Equal(t, 1.0, testutil.ToFloat64(artEvents.WithLabelValues(EventLike))-before)
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordBlobCleanupFailure()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "atelier_blob_cleanup_failures_total")
}
