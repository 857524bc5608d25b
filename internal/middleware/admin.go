package middleware

import (
	"crypto/subtle"
	"expert-api/internal/logger"
	"expert-api/internal/utils"
	"net"
	"net/http"
	"strings"
)

// AdminHeader carries the admin token.
const AdminHeader = "x-admin-token"

// AdminGuard protects operator endpoints with a shared token and, when
// configured, a source address allowlist (single IPs or CIDRs). The
// allowlist is checked against the socket peer unless TrustProxy is set, in
// which case the forwarded client address is used.
type AdminGuard struct {
	TrustProxy bool

	token      string
	allowIPs   map[string]struct{}
	allowCIDRs []*net.IPNet
}

// NewAdminGuard parses allow entries; invalid ones are skipped. An empty
// token disables every guarded endpoint.
func NewAdminGuard(token string, allow []string) *AdminGuard {
	g := &AdminGuard{token: token, allowIPs: map[string]struct{}{}}
	for _, a := range allow {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.Contains(a, "/") {
			if _, n, err := net.ParseCIDR(a); err == nil {
				g.allowCIDRs = append(g.allowCIDRs, n)
			}
			continue
		}
		if ip := net.ParseIP(a); ip != nil {
			g.allowIPs[ip.String()] = struct{}{}
		}
	}
	return g
}

// NewAdminGuardFromEnv reads ADMIN_TOKEN, ADMIN_ALLOW (comma separated) and
// ADMIN_TRUST_PROXY.
func NewAdminGuardFromEnv() *AdminGuard {
	var allow []string
	if s := utils.EnvString("ADMIN_ALLOW", ""); s != "" {
		allow = strings.Split(s, ",")
	}
	g := NewAdminGuard(utils.EnvString("ADMIN_TOKEN", ""), allow)
	g.TrustProxy = utils.EnvBool("ADMIN_TRUST_PROXY", false)
	return g
}

func (g *AdminGuard) sourceIP(r *http.Request) string {
	if g.TrustProxy {
		return ClientIP(r)
	}
	return RemoteIP(r)
}

func (g *AdminGuard) restricted() bool { return len(g.allowIPs) > 0 || len(g.allowCIDRs) > 0 }

func (g *AdminGuard) allowed(ip net.IP) bool {
	if !g.restricted() {
		return true
	}
	if ip == nil {
		return false
	}
	if _, ok := g.allowIPs[ip.String()]; ok {
		return true
	}
	for _, n := range g.allowCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (g *AdminGuard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logger.L()
		if g.token == "" {
			l.Warn("admin_block", "reason", "no_token_configured", "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "admin endpoints disabled")
			return
		}
		ip := g.sourceIP(r)
		if !g.allowed(net.ParseIP(ip)) {
			l.Warn("admin_block", "reason", "address", "ip", ip)
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		got := r.Header.Get(AdminHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(g.token)) != 1 {
			l.Warn("admin_block", "reason", "token", "ip", ip)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
