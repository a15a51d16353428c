package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tls-gate/tls-gate/internal/config"
)

// Route 将页面配置与派生属性聚合在一起，供路由/策略层直接复用。
type Route struct {
	// Config 是用户在 config.toml 中声明的 Route 字段副本，避免外部修改。
	Config config.RouteConfig
	// Path 是规范化后的前缀（保留开头 /，去掉多余的尾部 /）。
	Path string
	// RequireSSL 表示进入 handler 前是否要触发入口钩子。
	RequireSSL bool
}

// RouteTable 提供请求路径到 Route 的最长前缀匹配查询。启动阶段构建一次，
// 之后只读，可被所有请求并发使用。
type RouteTable struct {
	ordered []*Route
}

// NewRouteTable 根据配置构建路径前缀映射，并做重复检测。
func NewRouteTable(cfg *config.Config) (*RouteTable, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	table := &RouteTable{ordered: make([]*Route, 0, len(cfg.Routes))}
	seen := map[string]struct{}{}

	for _, rc := range cfg.Routes {
		normalized := normalizePath(rc.Path)
		if normalized == "" {
			return nil, fmt.Errorf("invalid path for route %s", rc.Name)
		}
		if _, exists := seen[normalized]; exists {
			return nil, fmt.Errorf("duplicate path mapping detected for %s", normalized)
		}
		seen[normalized] = struct{}{}

		table.ordered = append(table.ordered, &Route{
			Config:     rc,
			Path:       normalized,
			RequireSSL: rc.RequireSSL,
		})
	}

	// 最长前缀优先，保证 /account/settings 先于 /account 命中。
	sort.Slice(table.ordered, func(i, j int) bool {
		return len(table.ordered[i].Path) > len(table.ordered[j].Path)
	})

	return table, nil
}

// Lookup 返回请求路径命中的路由；未命中返回 false，由调用方按普通页面处理。
func (t *RouteTable) Lookup(path string) (*Route, bool) {
	normalized := normalizePath(path)
	if normalized == "" {
		return nil, false
	}

	for _, route := range t.ordered {
		if matchesPrefix(normalized, route.Path) {
			return route, true
		}
	}
	return nil, false
}

// List 返回所有路由（按前缀长度降序），供诊断端点展示。
func (t *RouteTable) List() []*Route {
	out := make([]*Route, len(t.ordered))
	copy(out, t.ordered)
	return out
}

func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || !strings.HasPrefix(trimmed, "/") {
		return ""
	}
	if trimmed != "/" {
		trimmed = strings.TrimRight(trimmed, "/")
	}
	return trimmed
}

// matchesPrefix 要求前缀在路径分段边界上命中：/account 匹配 /account/settings，
// 但不匹配 /accounting。
func matchesPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}
