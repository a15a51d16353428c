package server

import (
	"testing"

	"github.com/tls-gate/tls-gate/internal/config"
)

func TestRouteTableLongestPrefixWins(t *testing.T) {
	table := newTestRouteTable(t,
		config.RouteConfig{Name: "account", Path: "/account", RequireSSL: true},
		config.RouteConfig{Name: "settings", Path: "/account/settings", RequireSSL: false},
	)

	route, ok := table.Lookup("/account/settings/profile")
	if !ok {
		t.Fatal("expected a match")
	}
	if route.Config.Name != "settings" {
		t.Fatalf("longest prefix should win, got %s", route.Config.Name)
	}

	route, ok = table.Lookup("/account/orders")
	if !ok || route.Config.Name != "account" {
		t.Fatalf("expected account route, got %+v (ok=%v)", route, ok)
	}
}

func TestRouteTableMatchesOnSegmentBoundary(t *testing.T) {
	table := newTestRouteTable(t,
		config.RouteConfig{Name: "account", Path: "/account", RequireSSL: true},
	)

	if _, ok := table.Lookup("/accounting"); ok {
		t.Fatal("/accounting must not match /account")
	}
	if _, ok := table.Lookup("/account"); !ok {
		t.Fatal("/account should match itself")
	}
}

func TestRouteTableRootMatchesEverything(t *testing.T) {
	table := newTestRouteTable(t,
		config.RouteConfig{Name: "home", Path: "/"},
	)

	if _, ok := table.Lookup("/anything/at/all"); !ok {
		t.Fatal("root route should match any path")
	}
}

func TestRouteTableRejectsDuplicatePaths(t *testing.T) {
	cfg := &config.Config{Routes: []config.RouteConfig{
		{Name: "a", Path: "/login"},
		{Name: "b", Path: "/login/"},
	}}
	if _, err := NewRouteTable(cfg); err == nil {
		t.Fatal("duplicate normalized paths should be rejected")
	}
}

func TestRouteTableUnmatchedPathReturnsFalse(t *testing.T) {
	table := newTestRouteTable(t,
		config.RouteConfig{Name: "login", Path: "/login", RequireSSL: true},
	)

	if _, ok := table.Lookup("/cart"); ok {
		t.Fatal("unconfigured path must not match")
	}
}

func newTestRouteTable(t *testing.T, routes ...config.RouteConfig) *RouteTable {
	t.Helper()

	table, err := NewRouteTable(&config.Config{Routes: routes})
	if err != nil {
		t.Fatalf("failed to create route table: %v", err)
	}
	return table
}
