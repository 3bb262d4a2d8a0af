package rest

import (
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Dispatch struct {
	Service DispatchUsecase
}

func InitRestDispatch(app fiber.Router, service DispatchUsecase) Dispatch {
	rest := Dispatch{Service: service}
	app.Post("/dispatch/run", rest.Run)
	app.Post("/dispatch/requeue", rest.Requeue)
	app.Get("/dispatch/pool", rest.PoolStats)
	return rest
}

// Run executes one cycle synchronously. A cycle already running in this
// process answers 409.
func (h *Dispatch) Run(c *fiber.Ctx) error {
	result, err := h.Service.RunOnce(c.UserContext())
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Dispatch cycle " + string(result.Outcome),
		Results: result,
	})
}

func (h *Dispatch) Requeue(c *fiber.Ctx) error {
	requeued, err := h.Service.RequeueStale(c.UserContext())
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Stale claims requeued",
		Results: fiber.Map{"requeued": requeued},
	})
}
