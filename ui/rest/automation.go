package rest

import (
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Automation struct {
	Service AutomationUsecase
}

func InitRestAutomation(app fiber.Router, service AutomationUsecase) Automation {
	rest := Automation{Service: service}

	// horizon extension is system wide, registered ahead of the tenant group
	app.Post("/automations/extend", rest.ExtendHorizons)

	group := app.Group("/automations", middleware.Tenant())
	group.Post("/", rest.Create)
	group.Get("/", rest.List)
	group.Post("/preview", rest.Preview)
	group.Get("/:id", rest.Get)
	group.Post("/:id/pause", rest.Pause)
	group.Post("/:id/resume", rest.Resume)
	group.Delete("/:id", rest.Delete)

	return rest
}

func (handler *Automation) Create(c *fiber.Ctx) error {
	var req domain.CreateAutomationRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body: " + err.Error()))
	}

	automation, report, err := handler.Service.Create(c.UserContext(), middleware.TenantID(c), req)
	if err != nil && automation == nil {
		panicIfError(err)
	}

	message := "Automation created"
	if err != nil {
		logrus.WithError(err).WithField("automation_id", automation.ID).Error("[AUTOMATION] initial materialization failed")
		message = "Automation created, initial posts will be materialized on the next horizon run"
	}

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  fiber.StatusCreated,
		Code:    "SUCCESS",
		Message: message,
		Results: fiber.Map{
			"automation":      automation,
			"materialization": report,
		},
	})
}

func (handler *Automation) List(c *fiber.Ctx) error {
	filter := domain.AutomationFilter{
		Status:         domain.AutomationStatus(c.Query("status")),
		IncludeDeleted: c.QueryBool("include_deleted", false),
	}

	automations, err := handler.Service.List(c.UserContext(), middleware.TenantID(c), filter)
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Automations fetched",
		Results: automations,
	})
}

func (handler *Automation) Get(c *fiber.Ctx) error {
	automation, err := handler.Service.Get(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Automation fetched",
		Results: automation,
	})
}

func (handler *Automation) Pause(c *fiber.Ctx) error {
	automation, err := handler.Service.Pause(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Automation paused",
		Results: automation,
	})
}

func (handler *Automation) Resume(c *fiber.Ctx) error {
	automation, report, err := handler.Service.Resume(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	if err != nil && automation == nil {
		panicIfError(err)
	}
	if err != nil {
		logrus.WithError(err).WithField("automation_id", automation.ID).Error("[AUTOMATION] materialization on resume failed")
	}

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Automation resumed",
		Results: fiber.Map{
			"automation":      automation,
			"materialization": report,
		},
	})
}

func (handler *Automation) Delete(c *fiber.Ctx) error {
	removed, err := handler.Service.Delete(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Automation deleted",
		Results: fiber.Map{"removed_pending_posts": removed},
	})
}

func (handler *Automation) Preview(c *fiber.Ctx) error {
	var req domain.CreateAutomationRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body: " + err.Error()))
	}

	items, err := handler.Service.Preview(c.UserContext(), req, c.QueryInt("limit", 0))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Schedule preview",
		Results: items,
	})
}

func (handler *Automation) ExtendHorizons(c *fiber.Ctx) error {
	report, err := handler.Service.ExtendHorizons(c.UserContext())
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Horizons extended",
		Results: report,
	})
}
