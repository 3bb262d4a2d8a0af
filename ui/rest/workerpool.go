package rest

import (
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// PoolStats returns real-time dispatch pool statistics.
func (h *Dispatch) PoolStats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Dispatch pool stats",
		Results: h.Service.PoolStats(),
	})
}
