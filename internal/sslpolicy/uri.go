package sslpolicy

import (
	"sort"
	"strings"
)

// RedirectTarget carries the request attributes needed to rebuild an
// absolute URI on the other scheme. Query values are the framework's
// already-decoded strings and are joined as-is; values containing reserved
// characters (&, =) are a known fidelity limitation of this format.
type RedirectTarget struct {
	BaseURL string
	Path    string
	Query   map[string]string
}

// BuildRedirectURI composes the fully qualified URI for the given scheme:
// resolved host with exactly one trailing slash, the request path, and the
// query parameters sorted by key for deterministic output.
func (p *Policy) BuildRedirectURI(scheme string, target RedirectTarget) string {
	host := p.ResolveHost(scheme, target.BaseURL)
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(strings.TrimPrefix(target.Path, "/"))

	if len(target.Query) > 0 {
		keys := make([]string, 0, len(target.Query))
		for key := range target.Query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		b.WriteString("?")
		for i, key := range keys {
			if i > 0 {
				b.WriteString("&")
			}
			b.WriteString(key)
			b.WriteString("=")
			b.WriteString(target.Query[key])
		}
	}

	return b.String()
}
