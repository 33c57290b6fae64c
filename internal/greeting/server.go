package greeting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/wesleyorama2/hellobench/internal/logger"
)

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server serves a Controller over HTTP.
type Server struct {
	app *fiber.App
	log *zap.Logger
}

// NewServer wires service into a controller and mounts it on a new fiber app.
func NewServer(service Service, log *zap.Logger, cfg ServerConfig) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "hellobench",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error("panic recovered",
				zap.String("path", c.Path()),
				zap.String("panic", fmt.Sprint(e)),
				zap.Stack("stack"))
		},
	}))

	NewController(service).Register(app)

	return &Server{app: app, log: log}
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// ListenAndServe listens on addr and blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("greeting server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Serve accepts connections on ln and blocks until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("greeting server listening", zap.String("addr", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("greeting server shutting down")
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler answers every unhandled error with a plain-text status message.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(code).SendString(utils.StatusMessage(code))
	}
}
