package rest

import (
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
)

type Post struct {
	Service AutomationUsecase
}

func InitRestPost(app fiber.Router, service AutomationUsecase) Post {
	rest := Post{Service: service}

	group := app.Group("/posts", middleware.Tenant())
	group.Get("/", rest.List)
	group.Get("/stats", rest.Stats)
	group.Get("/:id", rest.Get)
	group.Put("/:id", rest.Update)
	group.Post("/:id/resubmit", rest.Resubmit)

	return rest
}

func (handler *Post) List(c *fiber.Ctx) error {
	filter := domain.PostFilter{
		AutomationID: c.Query("automation_id"),
		Status:       domain.PostStatus(c.Query("status")),
		From:         queryTime(c, "from"),
		To:           queryTime(c, "to"),
		Limit:        c.QueryInt("limit", 0),
		Offset:       c.QueryInt("offset", 0),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		panic(pkgError.ValidationError("unknown status " + string(filter.Status)))
	}

	posts, err := handler.Service.ListPosts(c.UserContext(), middleware.TenantID(c), filter)
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Posts fetched",
		Results: posts,
	})
}

// queryTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func queryTime(c *fiber.Ctx, key string) time.Time {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	t, err := timeutils.ParseDate(raw)
	if err != nil {
		panic(pkgError.ValidationError(key + ": " + err.Error()))
	}
	return t
}

func (handler *Post) Stats(c *fiber.Ctx) error {
	stats, err := handler.Service.PostStats(c.UserContext(), middleware.TenantID(c))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Post stats",
		Results: stats,
	})
}

func (handler *Post) Get(c *fiber.Ctx) error {
	post, err := handler.Service.GetPost(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Post fetched",
		Results: post,
	})
}

func (handler *Post) Update(c *fiber.Ctx) error {
	var req domain.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body: " + err.Error()))
	}

	post, err := handler.Service.UpdatePostContent(c.UserContext(), middleware.TenantID(c), c.Params("id"), req)
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Post updated",
		Results: post,
	})
}

func (handler *Post) Resubmit(c *fiber.Ctx) error {
	post, err := handler.Service.ResubmitPost(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	panicIfError(err)

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Post queued again",
		Results: post,
	})
}
