package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the /healthz payload
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// HealthCheckWithDeps returns the /healthz handler. Each named check pings a
// dependency (postgres, redis); any failure turns the response 503 so the
// load balancer stops routing donations to a half-up instance.
func HealthCheckWithDeps(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		results := make(map[string]string, len(checks))

		for name, check := range checks {
			if err := check(); err != nil {
				results[name] = "unhealthy: " + err.Error()
				status = "unhealthy"
			} else {
				results[name] = "healthy"
			}
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, HealthResponse{
			Status:  status,
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}
