package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ticket-backend/utils"
)

var (
	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Successful ticket allocations per tier",
		},
		[]string{"ticket_type"},
	)

	soldOutRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_out_total",
			Help: "Allocation requests rejected for exhausted capacity per tier",
		},
		[]string{"ticket_type"},
	)

	allocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticket_allocation_duration_seconds",
			Help:    "Duration of the allocation transaction",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"ticket_type"},
	)

	verificationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Verification submissions by outcome",
		},
		[]string{"status"},
	)
)

// TrackSale records one successful allocation for a tier.
func TrackSale(ticketType string) {
	ticketsSold.WithLabelValues(ticketType).Inc()
}

// TrackSoldOut records one allocation rejected at capacity.
func TrackSoldOut(ticketType string) {
	soldOutRejections.WithLabelValues(ticketType).Inc()
}

// TrackAllocationDuration records how long the allocation transaction took.
func TrackAllocationDuration(ticketType string, duration time.Duration) {
	allocationDuration.WithLabelValues(ticketType).Observe(duration.Seconds())
}

// TrackVerification records a verification submission outcome.
func TrackVerification(outcome string) {
	verificationSubmissions.WithLabelValues(outcome).Inc()
}

// StartOpsServer serves /metrics and /health on a separate listener so the
// scrape surface stays off the public port.
func StartOpsServer(port string, redisClient *redis.Client) {
	e := echo.New()

	metricsHandler := promhttp.Handler()
	e.GET("/metrics", func(c echo.Context) error {
		metricsHandler.ServeHTTP(c.Response(), c.Request())
		return nil
	})
	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: e,
	}

	log.Printf("Ops server listening on :%s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Ops server stopped: %v", err)
	}
}
