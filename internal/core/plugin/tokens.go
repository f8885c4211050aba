package plugin

import (
	"strings"

	"github.com/google/uuid"

	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// tokensPlugin issues stable per-service tokens, typically used as Rails
// secret tokens in development. A token is derived from the project, target,
// pod and service names, so it never changes between runs and never needs to
// be stored. Values already present in the environment are left alone.
type tokensPlugin struct{}

var tokenNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("cage.faraday.io"))

func (tokensPlugin) Name() string { return "tokens" }

func (tokensPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if len(ctx.Tokens) == 0 {
		return nil
	}
	for _, name := range cfg.ServiceNames() {
		envName, ok := ctx.Tokens[name]
		if !ok {
			continue
		}
		svc := cfg.Services[name]
		if _, present := svc.Environment.Get(envName); present {
			continue
		}
		svc.Environment.Set(envName, serviceToken(ctx.Project, ctx.Target, ctx.PodName, name))
	}
	return nil
}

// serviceToken derives the deterministic token for one service.
func serviceToken(project, target, pod, service string) string {
	name := strings.Join([]string{project, target, pod, service}, "/")
	return uuid.NewSHA1(tokenNamespace, []byte(name)).String()
}
