package greeting

import (
	"github.com/gofiber/fiber/v2"
)

// Controller exposes a Service over HTTP.
type Controller struct {
	service Service
}

// NewController creates a controller backed by service.
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Hello returns whatever the backing service returns.
func (c *Controller) Hello() string {
	return c.service.Hello()
}

// Register mounts the controller's routes on router.
func (c *Controller) Register(router fiber.Router) {
	router.Get("/", c.handleHello)
}

func (c *Controller) handleHello(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.Status(fiber.StatusOK).SendString(c.Hello())
}
