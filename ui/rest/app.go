package rest

import (
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type Options struct {
	AppName        string
	Version        string
	BasePath       string
	Debug          bool
	TrustedProxies []string
	// Users maps basic auth user names to secrets. Empty disables auth.
	Users         map[string]string
	RateLimit     int
	Automations   AutomationUsecase
	Dispatcher    DispatchUsecase
	HealthChecks  map[string]HealthCheck
	DisableLogger bool
}

// NewApp builds the fiber application with every route registered.
func NewApp(opts Options) *fiber.App {
	fiberConfig := fiber.Config{
		AppName:               opts.AppName,
		Network:               "tcp",
		ServerHeader:          "Hidden",
		DisableStartupMessage: true,
	}
	if len(opts.TrustedProxies) > 0 {
		fiberConfig.EnableTrustedProxyCheck = true
		fiberConfig.TrustedProxies = opts.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)
	app.Use(requestid.New())
	app.Use(middleware.Recovery())
	app.Use(helmet.New())
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
		}))
	}
	if opts.Debug && !opts.DisableLogger {
		app.Use(logger.New())
	}

	apiGroup := app.Group(opts.BasePath + "/api")
	// registered before basic auth so load balancers can call it without credentials
	InitRestHealth(apiGroup, opts.Version, opts.HealthChecks)
	if len(opts.Users) > 0 {
		apiGroup.Use(basicauth.New(basicauth.Config{
			Users: opts.Users,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
		}))
	}

	if opts.Automations != nil {
		InitRestAutomation(apiGroup, opts.Automations)
		InitRestPost(apiGroup, opts.Automations)
		InitRestCredential(apiGroup, opts.Automations)
	}
	if opts.Dispatcher != nil {
		InitRestDispatch(apiGroup, opts.Dispatcher)
	}

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	return app
}
