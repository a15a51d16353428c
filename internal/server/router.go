package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tls-gate/tls-gate/internal/sslpolicy"
)

// AppHandler describes the component responsible for rendering the page a
// request resolved to. It allows injecting fake handlers during tests.
type AppHandler interface {
	Handle(fiber.Ctx, *Route) error
}

// AppHandlerFunc adapts a function to the AppHandler interface.
type AppHandlerFunc func(fiber.Ctx, *Route) error

// Handle makes AppHandlerFunc satisfy AppHandler.
func (f AppHandlerFunc) Handle(c fiber.Ctx, route *Route) error {
	return f(c, route)
}

// AppOptions controls how the Fiber application should behave on a specific port.
type AppOptions struct {
	Logger     *logrus.Logger
	Routes     *RouteTable
	Enforcer   *sslpolicy.Enforcer
	Handler    AppHandler
	ListenPort int
}

const (
	contextKeyRoute     = "_tlsgate_route"
	contextKeyRequestID = "_tlsgate_request_id"
)

// NewApp builds a Fiber application with the SSL policy middleware chain:
// recovery, request IDs, the downgrade (exit) hook wrapping every request,
// and the entry hook for routes configured with RequireSSL. Diagnostics
// paths under /-/ bypass policy enforcement entirely.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Routes == nil {
		return nil, errors.New("route table is required")
	}
	if opts.Enforcer == nil {
		return nil, errors.New("ssl enforcer is required")
	}
	if opts.Handler == nil {
		return nil, errors.New("app handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts))
	app.Use(downgradeMiddleware(opts.Enforcer))
	app.Use(securePageMiddleware(opts))

	app.All("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}
		route, _ := routeFromContext(c)
		return opts.Handler.Handle(c, route)
	})

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID，并基于路径前缀查找 Route。
// 未命中的路径按普通页面放行，不强制 404。
func requestContextMiddleware(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}

		if route, ok := opts.Routes.Lookup(c.Path()); ok {
			c.Locals(contextKeyRoute, route)
		}
		return c.Next()
	}
}

// downgradeMiddleware 让退出钩子包裹每个请求；诊断路径除外。
func downgradeMiddleware(enforcer *sslpolicy.Enforcer) fiber.Handler {
	exit := enforcer.Middleware()
	return func(c fiber.Ctx) error {
		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}
		return exit(c)
	}
}

// securePageMiddleware triggers the entry hook for routes marked RequireSSL.
// A redirect issued by the hook short-circuits the rest of the chain; the
// response set on the context is the final answer.
func securePageMiddleware(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}

		route, ok := routeFromContext(c)
		if ok && route.RequireSSL {
			redirected, err := opts.Enforcer.RequireSSL(c)
			if err != nil {
				return err
			}
			if redirected {
				opts.Logger.WithFields(logrus.Fields{
					"action": "require_ssl",
					"route":  route.Config.Name,
				}).Debug("secure page redirected")
				return nil
			}
		}
		return c.Next()
	}
}

func routeFromContext(c fiber.Ctx) (*Route, bool) {
	if value := c.Locals(contextKeyRoute); value != nil {
		if route, ok := value.(*Route); ok {
			return route, true
		}
	}
	return nil, false
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
