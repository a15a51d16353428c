package sslpolicy

import (
	"strings"
	"sync"
)

// 目标 URI 的 scheme 取值，BuildRedirectURI/ResolveHost 仅接受这两种。
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Options 描述策略的静态配置，来自 config.toml 的 [Policy] 段。
type Options struct {
	// HTTPSHost/HTTPHost 为空时，将从首个到达请求的 base URL 推导并永久缓存。
	HTTPSHost string
	HTTPHost  string
	// RemainInSSL 为 true 时，退出钩子不再把未标记的安全请求降级回 HTTP。
	RemainInSSL bool
}

// Policy 保存进程级的 SSL 策略状态。host 字段在首次解析后被缓存，
// 此后对所有请求保持稳定；并发的首次解析由互斥锁串行化，保证幂等。
type Policy struct {
	mu        sync.Mutex
	httpsHost string
	httpHost  string

	remainInSSL bool
	disabled    bool
}

// New 根据配置构造策略对象。未显式配置的 host 留空，等待首个请求推导。
func New(opts Options) *Policy {
	return &Policy{
		httpsHost:   strings.TrimSpace(opts.HTTPSHost),
		httpHost:    strings.TrimSpace(opts.HTTPHost),
		remainInSSL: opts.RemainInSSL,
	}
}

// ResolveHost 返回目标 scheme 对应的 host。若尚未配置，则从 baseURL 剥离
// scheme 前缀推导，并把结果写回策略缓存：首个请求推导出的 host 即成为
// 进程生命周期内的最终值，后续请求的 baseURL 不再影响结果。
func (p *Policy) ResolveHost(scheme, baseURL string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	slot := p.hostSlot(scheme)
	if *slot == "" {
		*slot = stripSchemePrefix(baseURL)
	}
	return *slot
}

// Hosts 返回当前缓存的 https/http host，供诊断端点展示。未解析时为空串。
func (p *Policy) Hosts() (httpsHost, httpHost string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.httpsHost, p.httpHost
}

// RemainInSSL reports whether the downgrade redirect is suppressed.
func (p *Policy) RemainInSSL() bool {
	return p.remainInSSL
}

// Disabled reports whether the whole mechanism was switched off at setup.
func (p *Policy) Disabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disabled
}

func (p *Policy) disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled = true
}

func (p *Policy) hostSlot(scheme string) *string {
	if scheme == SchemeHTTPS {
		return &p.httpsHost
	}
	return &p.httpHost
}

// stripSchemePrefix 去掉 base URL 的 http:// 或 https:// 前缀，保留 host 部分。
func stripSchemePrefix(baseURL string) string {
	trimmed := strings.TrimPrefix(baseURL, "https://")
	if trimmed == baseURL {
		trimmed = strings.TrimPrefix(baseURL, "http://")
	}
	return trimmed
}
