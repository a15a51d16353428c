package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.ShutdownTimeout.DurationValue() <= 0 {
		return newFieldError("Global.ShutdownTimeout", "必须大于 0")
	}
	if err := validateEngine(g.Engine); err != nil {
		return fmt.Errorf("Global.Engine: %w", err)
	}

	if err := validateHost(c.Policy.HTTPSHost); err != nil {
		return fmt.Errorf("Policy.HTTPSHost: %w", err)
	}
	if err := validateHost(c.Policy.HTTPHost); err != nil {
		return fmt.Errorf("Policy.HTTPHost: %w", err)
	}

	seenNames := map[string]struct{}{}
	seenPaths := map[string]struct{}{}
	for i := range c.Routes {
		route := &c.Routes[i]
		if route.Name == "" {
			return newFieldError("Route[].Name", "不能为空")
		}
		if _, exists := seenNames[route.Name]; exists {
			return newFieldError(routeField(route.Name, "Name"), "重复")
		}
		seenNames[route.Name] = struct{}{}

		if err := validatePath(route.Path); err != nil {
			return fmt.Errorf("%s: %w", routeField(route.Name, "Path"), err)
		}
		if _, exists := seenPaths[route.Path]; exists {
			return newFieldError(routeField(route.Name, "Path"), "重复")
		}
		seenPaths[route.Path] = struct{}{}
	}

	return nil
}

// validateHost 校验显式配置的 host：只要 host（可含端口/尾部斜杠），不要 scheme。
func validateHost(host string) error {
	if host == "" {
		return nil
	}
	if strings.Contains(host, " ") {
		return errors.New("不允许包含空格")
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return errors.New("不应包含协议头")
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return errors.New("不能为空")
	}
	if !strings.HasPrefix(path, "/") {
		return errors.New("必须以 / 开头")
	}
	if strings.Contains(path, " ") {
		return errors.New("不允许包含空格")
	}
	return nil
}

func validateEngine(engine string) error {
	if engine == "" {
		return nil
	}
	if strings.ContainsAny(engine, " /") {
		return errors.New("引擎标识不允许包含空格或斜杠")
	}
	return nil
}

// SecureRouteCount 返回声明了 RequireSSL 的路由数量，供启动日志输出。
func (c *Config) SecureRouteCount() int {
	count := 0
	for _, route := range c.Routes {
		if route.RequireSSL {
			count++
		}
	}
	return count
}
