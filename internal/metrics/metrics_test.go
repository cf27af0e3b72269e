package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, r http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("studiobooking")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/studios/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/studios/abc", nil))
	}

	m.BookingCreated()
	m.BookingConflict()
	m.BookingRetry()
	m.BookingRetry()

	body := scrape(t, r)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/studios/:id",service="studiobooking",status="200"} 2`)
	assert.Contains(t, body, `bookings_created_total{service="studiobooking"} 1`)
	assert.Contains(t, body, `booking_conflicts_total{service="studiobooking"} 1`)
	assert.Contains(t, body, `booking_retries_total{service="studiobooking"} 2`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.BookingConflict()
		m.BookingRetry()
	})
}
