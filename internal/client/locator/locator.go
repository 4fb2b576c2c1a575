// Package locator decides which backend base URL the client talks to.
//
// The decision is a fixed table of rules evaluated top to bottom; the first
// rule whose predicate matches the environment supplies the URL. Resolution
// has no error path and no state: the same Env always yields the same URL.
package locator

import (
	"context"
	"net"
	"strings"

	"github.com/dmitrijs2005/quizera/internal/logging"
)

// Fixed endpoints.
const (
	LocalURL    = "http://localhost:5000/api"
	RenderURL   = "https://quizera-ai-backend.onrender.com/api"
	VercelURL   = "https://quizera-ai-backend.vercel.app/api"
	FallbackURL = "http://192.168.31.5:5000/api"
)

// Env is the part of the runtime environment the locator looks at.
type Env struct {
	// Override is an explicitly configured base URL, used verbatim.
	Override string
	// Host is the host name the client runs under.
	Host string
}

type rule struct {
	name  string
	match func(Env) bool
	url   func(Env) string
}

func fixed(u string) func(Env) string {
	return func(Env) string { return u }
}

var rules = []rule{
	{
		name:  "override",
		match: func(e Env) bool { return strings.TrimSpace(e.Override) != "" },
		url:   func(e Env) string { return e.Override },
	},
	{name: "local", match: isLocalHost, url: fixed(LocalURL)},
	{name: "render", match: hostContains("onrender.com"), url: fixed(RenderURL)},
	{name: "vercel", match: hostContains("vercel.app"), url: fixed(VercelURL)},
	{name: "fallback", match: func(Env) bool { return true }, url: fixed(FallbackURL)},
}

var localHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"::1":       {},
}

// normalizeHost lower-cases h and strips a port and IPv6 brackets.
func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	return strings.Trim(h, "[]")
}

func isLocalHost(e Env) bool {
	_, ok := localHosts[normalizeHost(e.Host)]
	return ok
}

func hostContains(domain string) func(Env) bool {
	return func(e Env) bool {
		return strings.Contains(normalizeHost(e.Host), domain)
	}
}

// Match returns the name of the rule that applies to env and its URL.
func Match(env Env) (name, url string) {
	for _, r := range rules {
		if r.match(env) {
			return r.name, r.url(env)
		}
	}
	// The fallback rule always matches.
	return "fallback", FallbackURL
}

// Resolve returns the backend base URL for env.
func Resolve(env Env) string {
	_, url := Match(env)
	return url
}

// ResolveWithLogger is Resolve with a diagnostic log line naming the rule
// that matched.
func ResolveWithLogger(ctx context.Context, env Env, log logging.Logger) string {
	name, url := Match(env)
	log.Info(ctx, "backend resolved", "rule", name, "host", env.Host, "url", url)
	return url
}
