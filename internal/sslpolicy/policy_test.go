package sslpolicy

import (
	"fmt"
	"sync"
	"testing"
)

func TestResolveHostPrefersConfiguredValue(t *testing.T) {
	p := New(Options{HTTPSHost: "secure.example.com"})

	host := p.ResolveHost(SchemeHTTPS, "http://localhost:3000")
	if host != "secure.example.com" {
		t.Fatalf("expected configured host, got %s", host)
	}
}

func TestResolveHostDerivesAndMemoizesFirstBaseURL(t *testing.T) {
	p := New(Options{})

	first := p.ResolveHost(SchemeHTTPS, "http://first.example.com")
	if first != "first.example.com" {
		t.Fatalf("expected derived host, got %s", first)
	}

	// 后续请求携带不同的 base URL，也必须返回首个推导结果。
	second := p.ResolveHost(SchemeHTTPS, "http://second.example.com")
	if second != "first.example.com" {
		t.Fatalf("memoized host should win, got %s", second)
	}
}

func TestResolveHostKeepsSchemesIndependent(t *testing.T) {
	p := New(Options{})

	https := p.ResolveHost(SchemeHTTPS, "http://plain.example.com")
	http := p.ResolveHost(SchemeHTTP, "https://tls.example.com")

	if https != "plain.example.com" {
		t.Fatalf("unexpected https host: %s", https)
	}
	if http != "tls.example.com" {
		t.Fatalf("unexpected http host: %s", http)
	}
}

func TestResolveHostConvergesUnderConcurrentFirstUse(t *testing.T) {
	p := New(Options{})

	const workers = 32
	results := make([]string, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx] = p.ResolveHost(SchemeHTTPS, fmt.Sprintf("http://host-%d.example.com", idx))
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("resolution diverged: %s vs %s", results[0], results[i])
		}
	}

	if again := p.ResolveHost(SchemeHTTPS, "http://late.example.com"); again != results[0] {
		t.Fatalf("late request should see memoized host, got %s", again)
	}
}

func TestStripSchemePrefix(t *testing.T) {
	if got := stripSchemePrefix("http://localhost:3000"); got != "localhost:3000" {
		t.Fatalf("http prefix not stripped: %s", got)
	}
	if got := stripSchemePrefix("https://example.com"); got != "example.com" {
		t.Fatalf("https prefix not stripped: %s", got)
	}
	if got := stripSchemePrefix("example.com"); got != "example.com" {
		t.Fatalf("bare host should pass through: %s", got)
	}
}

func TestDisabledFlag(t *testing.T) {
	p := New(Options{})
	if p.Disabled() {
		t.Fatal("policy should start enabled")
	}
	p.disable()
	if !p.Disabled() {
		t.Fatal("policy should report disabled after disable")
	}
}
