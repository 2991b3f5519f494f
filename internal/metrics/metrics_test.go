package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/api/v1/reservations", "201"))
	ObserveHTTP(http.MethodPost, "/api/v1/reservations", http.StatusCreated, 15*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/api/v1/reservations", "201"))
	assert.Equal(t, before+1, after)

	ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestIncEventAndRateLimited(t *testing.T) {
	IncEvent("reservation_created")
	IncEvent("reservation_created")
	assert.Equal(t, 2.0, testutil.ToFloat64(domainEvents.WithLabelValues("reservation_created")))

	IncRateLimited("/api/v1/services/book")
	assert.Equal(t, 1.0, testutil.ToFloat64(rateLimited.WithLabelValues("/api/v1/services/book")))
}
