package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tls-gate/tls-gate/internal/server"
	"github.com/tls-gate/tls-gate/internal/sslpolicy"
)

// RegisterPolicyRoutes 暴露 /-/policy 诊断接口，供 SRE 查询策略状态与
// 已缓存的 host 解析结果。
func RegisterPolicyRoutes(app *fiber.App, policy *sslpolicy.Policy, table *server.RouteTable, engine string) {
	if app == nil || policy == nil || table == nil {
		return
	}

	app.Get("/-/policy", func(c fiber.Ctx) error {
		httpsHost, httpHost := policy.Hosts()
		payload := fiber.Map{
			"engine":        engine,
			"disabled":      policy.Disabled(),
			"remain_in_ssl": policy.RemainInSSL(),
			"https_host":    httpsHost,
			"http_host":     httpHost,
			"routes":        encodeRoutes(table.List()),
			// 查询串按 key 升序原样拼接，值不做 URL 转义（已知限制）。
			"query_encoding": "raw-sorted-join",
		}
		return c.JSON(payload)
	})
}

type routePayload struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	RequireSSL bool   `json:"require_ssl"`
}

func encodeRoutes(list []*server.Route) []routePayload {
	out := make([]routePayload, 0, len(list))
	for _, route := range list {
		out = append(out, routePayload{
			Name:       route.Config.Name,
			Path:       route.Path,
			RequireSSL: route.RequireSSL,
		})
	}
	return out
}
