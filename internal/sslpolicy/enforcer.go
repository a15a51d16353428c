package sslpolicy

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// localsKeyRequireSSL marks a request that opted into SSL via RequireSSL.
// The flag lives in the request-scoped locals store and is never shared
// across requests.
const localsKeyRequireSSL = "_tlsgate_require_ssl"

// Enforcer binds the process-wide policy to a logger and exposes the two
// per-request hooks: RequireSSL (entry) and Middleware (exit).
type Enforcer struct {
	policy *Policy
	logger *logrus.Logger
}

// NewEnforcer wires the policy and logger together.
func NewEnforcer(policy *Policy, logger *logrus.Logger) (*Enforcer, error) {
	if policy == nil {
		return nil, errors.New("policy is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Enforcer{policy: policy, logger: logger}, nil
}

// Policy returns the enforcer's process-wide policy state.
func (e *Enforcer) Policy() *Policy {
	return e.policy
}

// RequireSSL is the entry hook, called from handler code the moment a secure
// page is identified. It always sets the per-request flag (repeat calls are
// idempotent) and, when the request arrived over plain HTTP with a method
// other than POST, replaces the response with a 302 redirect to the HTTPS
// equivalent URI. The returned bool tells the caller whether a redirect was
// issued, so it can skip the rest of the chain.
//
// POST requests are never redirected: a redirect would drop the request body.
// With the policy disabled the would-be redirect is logged at warning level
// and nothing else happens.
func (e *Enforcer) RequireSSL(c fiber.Ctx) (bool, error) {
	c.Locals(localsKeyRequireSSL, true)

	if requestSecure(c) || c.Method() == fiber.MethodPost {
		return false, nil
	}

	target := e.policy.BuildRedirectURI(SchemeHTTPS, targetFromCtx(c))
	if e.policy.Disabled() {
		e.logger.WithFields(logrus.Fields{
			"action": "require_ssl",
			"target": target,
		}).Warn("ssl policy disabled, redirect skipped")
		return false, nil
	}

	return true, c.Redirect().Status(fiber.StatusFound).To(target)
}

// Required reports whether RequireSSL was called during this request.
func Required(c fiber.Ctx) bool {
	flag, ok := c.Locals(localsKeyRequireSSL).(bool)
	return ok && flag
}

// Middleware is the exit hook. It always delegates to the rest of the chain
// first, then downgrades the response to a 302 redirect onto plain HTTP when
// the request was secure, not a POST, never marked via RequireSSL, and the
// policy does not say to remain in SSL. A page reached over HTTPS by
// happenstance is downgraded: SSL is opt-in per page, not sticky.
func (e *Enforcer) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if !requestSecure(c) || c.Method() == fiber.MethodPost {
			return nil
		}
		if Required(c) || e.policy.RemainInSSL() {
			return nil
		}

		target := e.policy.BuildRedirectURI(SchemeHTTP, targetFromCtx(c))
		if e.policy.Disabled() {
			e.logger.WithFields(logrus.Fields{
				"action": "ssl_downgrade",
				"target": target,
			}).Warn("ssl policy disabled, redirect skipped")
			return nil
		}

		return c.Redirect().Status(fiber.StatusFound).To(target)
	}
}

// requestSecure 判断请求是否经由加密传输到达；优先采信反向代理注入的
// X-Forwarded-Proto，其次回退到连接本身的 scheme。
func requestSecure(c fiber.Ctx) bool {
	if proto := c.Get(fiber.HeaderXForwardedProto); proto != "" {
		return strings.EqualFold(proto, SchemeHTTPS)
	}
	return c.Scheme() == SchemeHTTPS
}

func targetFromCtx(c fiber.Ctx) RedirectTarget {
	return RedirectTarget{
		BaseURL: c.BaseURL(),
		Path:    c.Path(),
		Query:   c.Queries(),
	}
}
