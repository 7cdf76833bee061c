package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parenthelper_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// AvatarFetches counts remote avatar downloads by outcome.
	AvatarFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parenthelper_avatar_fetches_total",
		Help: "Total number of avatar URL fetches by outcome",
	}, []string{"outcome"})

	// PasswordResets counts password reset attempts by step and outcome.
	PasswordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parenthelper_password_resets_total",
		Help: "Total number of password reset attempts by step and outcome",
	}, []string{"step", "outcome"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
