package rest

import (
	"context"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// HealthCheck returns nil when the dependency is usable.
type HealthCheck func(ctx context.Context) error

type Health struct {
	Version string
	Checks  map[string]HealthCheck
}

// InitRestHealth registers GET /health. It is meant for load balancers and
// is mounted outside basic auth.
func InitRestHealth(app fiber.Router, version string, checks map[string]HealthCheck) Health {
	handler := Health{Version: version, Checks: checks}
	app.Get("/health", handler.GetStatus)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.Checks))
	healthy := true
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	res := utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Service healthy",
		Results: fiber.Map{"version": h.Version, "checks": results},
	}
	if !healthy {
		res.Status = fiber.StatusServiceUnavailable
		res.Code = "SERVICE_UNAVAILABLE"
		res.Message = "One or more dependencies are unhealthy"
	}
	return c.Status(res.Status).JSON(res)
}
