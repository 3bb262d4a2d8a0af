package middleware

import (
	"fmt"

	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery renders panics as ResponseData. Handlers use utils.PanicIfNeeded
// with a pkgError value to pick the status code.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = fiber.StatusInternalServerError
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				if generic, ok := err.(pkgError.GenericError); ok {
					res.Status = generic.StatusCode()
					res.Code = generic.ErrCode()
					res.Message = generic.Error()
				}

				entry := logrus.WithFields(logrus.Fields{
					"method": ctx.Method(),
					"path":   ctx.Path(),
					"status": res.Status,
				})
				if res.Status >= fiber.StatusInternalServerError {
					entry.Errorf("[REST] panic recovered: %v", err)
				} else {
					entry.Debugf("[REST] request rejected: %v", err)
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
