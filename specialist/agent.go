// Package specialist wraps one domain persona bound to a system prompt and a
// language-model call. An agent is stateless per invocation: given context
// and tool calls it returns an assessment, and a failure of its model call
// never escapes the Invoke boundary; one failed specialist must not cascade
// into the surrounding pipeline.
package specialist

import (
	"context"
	"strings"
	"time"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/logging"
	"github.com/sensoryx/medagent/model"
)

// Options configure an Agent.
type Options struct {
	// SystemPrompt overrides the default persona prompt for the agent kind.
	SystemPrompt string
	Logger       logging.Logger
}

// Agent is one persona-bound reasoning unit.
type Agent struct {
	kind         core.AgentKind
	systemPrompt string
	gen          model.Generator
	gw           gateway.Gateway
	logger       logging.Logger
}

// New constructs an agent for the given kind.
func New(kind core.AgentKind, gen model.Generator, gw gateway.Gateway, optFns ...func(o *Options)) *Agent {
	opts := Options{
		SystemPrompt: PersonaPrompt(kind),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{
		kind:         kind,
		systemPrompt: opts.SystemPrompt,
		gen:          gen,
		gw:           gw,
		logger:       opts.Logger,
	}
}

// Kind returns the agent's persona kind.
func (a *Agent) Kind() core.AgentKind { return a.kind }

// Invoke executes the requested tool calls first, collecting results even
// when individual lookups fail, then issues exactly one model call combining
// the persona prompt, the given context and a rendering of the tool results.
// A model failure yields an error-tagged assessment rather than an error
// return.
func (a *Agent) Invoke(ctx context.Context, agentContext string, calls []gateway.ToolCall) core.Assessment {
	results := make([]gateway.ToolResult, 0, len(calls))
	tools := make([]string, 0, len(calls))
	for _, call := range calls {
		start := time.Now()
		res := gateway.Execute(ctx, a.gw, call)
		if res.Err != nil {
			a.logger.Warn("tool call failed",
				"agent", a.kind, "tool", call.Tool, "error", res.Err.Error())
		} else {
			a.logger.Debug("tool call completed",
				"agent", a.kind, "tool", call.Tool, "duration_ms", time.Since(start).Milliseconds())
		}
		results = append(results, res)
		tools = append(tools, call.Tool)
	}

	userContext := buildUserContext(a.kind, agentContext, results)

	start := time.Now()
	narrative, err := a.gen.GenerateText(ctx, a.systemPrompt, userContext)
	if err != nil {
		a.logger.Error("model call failed",
			"agent", a.kind, "provider", a.gen.Info().Provider, "error", err.Error())
		return core.Assessment{
			Agent:        a.kind,
			Narrative:    "Assessment unavailable: " + err.Error(),
			ToolsInvoked: tools,
			Error:        true,
			ErrorMessage: err.Error(),
		}
	}
	a.logger.Debug("model call completed",
		"agent", a.kind, "provider", a.gen.Info().Provider, "duration_ms", time.Since(start).Milliseconds())

	return core.Assessment{
		Agent:        a.kind,
		Narrative:    narrative,
		ToolsInvoked: tools,
		Fallback:     a.gen.Info().Provider == model.ProviderFallback,
	}
}

func buildUserContext(kind core.AgentKind, agentContext string, results []gateway.ToolResult) string {
	var b strings.Builder
	b.WriteString(agentContext)
	b.WriteString("\n\nAvailable Medical Data from Database:\n")
	b.WriteString(gateway.RenderResults(results))
	b.WriteString("\n\nBased on this data and your ")
	b.WriteString(string(kind))
	b.WriteString(" expertise, provide your assessment.")
	return b.String()
}
