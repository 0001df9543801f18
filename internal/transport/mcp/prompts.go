package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"
)

const promptCandidates = 5

// RegisterPrompts registers the find_agent prompt.
// [SRP] Prompt registration only, separate from server lifecycle and tool definitions.
func RegisterPrompts(s *mcpserver.MCPServer, dirSvc *directorysvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("find_agent",
			mcpmcp.WithPromptDescription("Pick an agent from the directory for a task. Seeds the conversation with the closest current matches."),
			mcpmcp.WithArgument("need",
				mcpmcp.ArgumentDescription("What the agent should be able to do, e.g. \"weather forecasts\""),
				mcpmcp.RequiredArgument(),
			),
		),
		findAgentHandler(dirSvc),
	)
}

func findAgentHandler(dirSvc *directorysvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		need := strings.TrimSpace(req.Params.Arguments["need"])
		if need == "" {
			return nil, fmt.Errorf("need is required")
		}

		candidates, err := dirSvc.List(ctx, domainagent.Query{Q: need, Limit: promptCandidates})
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}

		return mcpmcp.NewGetPromptResult(
			"Find an agent in AgentPages",
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: findAgentText(need, candidates),
					},
				),
			},
		), nil
	}
}

func findAgentText(need string, candidates []domainagent.Listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I need an agent that can help with: %s\n\n", need)
	if len(candidates) == 0 {
		sb.WriteString("No listing matches that text directly. Use search_agents with broader terms, a tag, or a platform filter.\n")
	} else {
		sb.WriteString("Current matches in the directory:\n")
		for _, c := range candidates {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", c.Name, c.URL, c.Description)
		}
		sb.WriteString("\nUse get_agent_info on the best candidate to check its skills and openness before contacting it.\n")
	}
	return sb.String()
}
