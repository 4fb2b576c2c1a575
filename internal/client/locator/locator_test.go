package locator

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/quizera/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		env      Env
		want     string
		wantRule string
	}{
		{name: "localhost", env: Env{Host: "localhost"}, want: LocalURL, wantRule: "local"},
		{name: "loopback ip", env: Env{Host: "127.0.0.1"}, want: LocalURL, wantRule: "local"},
		{name: "localhost with port", env: Env{Host: "localhost:5174"}, want: LocalURL, wantRule: "local"},
		{name: "ipv6 loopback", env: Env{Host: "[::1]:5174"}, want: LocalURL, wantRule: "local"},
		{name: "upper case", env: Env{Host: "LOCALHOST"}, want: LocalURL, wantRule: "local"},
		{name: "render", env: Env{Host: "myapp.onrender.com"}, want: RenderURL, wantRule: "render"},
		{name: "vercel", env: Env{Host: "myapp.vercel.app"}, want: VercelURL, wantRule: "vercel"},
		{name: "unknown host", env: Env{Host: "quizera.example.org"}, want: FallbackURL, wantRule: "fallback"},
		{name: "empty host", env: Env{}, want: FallbackURL, wantRule: "fallback"},
		{
			name:     "override wins over host",
			env:      Env{Override: "https://custom.example/api", Host: "myapp.vercel.app"},
			want:     "https://custom.example/api",
			wantRule: "override",
		},
		{
			name:     "override wins over localhost",
			env:      Env{Override: "https://custom.example/api", Host: "localhost"},
			want:     "https://custom.example/api",
			wantRule: "override",
		},
		{name: "blank override ignored", env: Env{Override: "   ", Host: "localhost"}, want: LocalURL, wantRule: "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.env))

			rule, url := Match(tt.env)
			assert.Equal(t, tt.wantRule, rule)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	env := Env{Host: "myapp.onrender.com"}
	assert.Equal(t, Resolve(env), Resolve(env))
}

func TestResolveWithLogger_LogsRule(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	got := ResolveWithLogger(context.Background(), Env{Host: "myapp.vercel.app"}, log)

	assert.Equal(t, VercelURL, got)
	assert.Contains(t, buf.String(), "rule=vercel")
	assert.Contains(t, buf.String(), "url="+VercelURL)
}
