package rest

import (
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
)

type Credential struct {
	Service AutomationUsecase
}

// InitRestCredential exposes the hand-off point of the token vault. Tokens
// are write-only over HTTP.
func InitRestCredential(app fiber.Router, service AutomationUsecase) Credential {
	rest := Credential{Service: service}

	group := app.Group("/credentials", middleware.Tenant())
	group.Put("/linkedin", rest.Store)
	group.Get("/linkedin", rest.Status)

	return rest
}

func (h *Credential) Store(c *fiber.Ctx) error {
	var req domain.StoreCredentialRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body: " + err.Error()))
	}

	tenantID := middleware.TenantID(c)
	_, err := h.Service.StoreCredential(c.UserContext(), tenantID, req)
	panicIfError(err)

	status, err := h.Service.CredentialStatus(c.UserContext(), tenantID)
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Credential stored",
		Results: status,
	})
}

func (h *Credential) Status(c *fiber.Ctx) error {
	status, err := h.Service.CredentialStatus(c.UserContext(), middleware.TenantID(c))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Credential status",
		Results: status,
	})
}
