package middleware

import (
	"strings"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	TenantHeader = "X-Tenant-ID"
	tenantLocal  = "tenant_id"
)

// Tenant rejects requests without an X-Tenant-ID header. Everything behind it
// is scoped to that tenant.
func Tenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := strings.TrimSpace(c.Get(TenantHeader))
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
				Status:  fiber.StatusBadRequest,
				Code:    "VALIDATION_ERROR",
				Message: TenantHeader + " header is required",
			})
		}
		c.Locals(tenantLocal, tenantID)
		return c.Next()
	}
}

func TenantID(c *fiber.Ctx) string {
	id, _ := c.Locals(tenantLocal).(string)
	return id
}
