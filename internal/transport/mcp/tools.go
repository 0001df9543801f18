package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	directorysvc "github.com/alanyang/agentpages/internal/service/directory"
)

// RegisterTools registers all MCP tools on the server. They mirror the skills
// published in the directory's own agent card.
// [SRP] Tool registration only.
// [OCP] Add a new tool with another AddTool call; server.go never changes.
func RegisterTools(s *mcpserver.MCPServer, dirSvc *directorysvc.Service) {
	s.AddTool(mcpmcp.NewTool("search_agents",
		mcpmcp.WithDescription("Search the AgentPages directory. All filters are optional; with none, returns the default ranking (featured, then most messaged, then best rated)."),
		mcpmcp.WithString("q", mcpmcp.Description("Case-insensitive text matched against name and description")),
		mcpmcp.WithString("platform", mcpmcp.Description("Exact platform, e.g. crewai, adk, custom")),
		mcpmcp.WithString("tag", mcpmcp.Description("Listings carrying this tag")),
		mcpmcp.WithString("type", mcpmcp.Description("agent or service")),
		mcpmcp.WithString("sort", mcpmcp.Description("default, newest or name")),
		mcpmcp.WithNumber("limit", mcpmcp.Description("Page size, 1-100 (default 20)")),
		mcpmcp.WithNumber("offset", mcpmcp.Description("Rows to skip")),
	), searchAgentsHandler(dirSvc))

	s.AddTool(mcpmcp.NewTool("get_agent_info",
		mcpmcp.WithDescription("Return the full listing for one agent. Exact name match first, then case-insensitive."),
		mcpmcp.WithString("name", mcpmcp.Required(), mcpmcp.Description("Agent name")),
	), getAgentInfoHandler(dirSvc))

	s.AddTool(mcpmcp.NewTool("register_agent",
		mcpmcp.WithDescription("Add or update a listing. Pass card_url to import a published A2A agent card, or name, description and url to submit manually. Registering an existing name updates it."),
		mcpmcp.WithString("card_url", mcpmcp.Description("URL of a published agent card, e.g. https://example.com/.well-known/agent.json")),
		mcpmcp.WithString("name", mcpmcp.Description("Agent name (manual submission)")),
		mcpmcp.WithString("description", mcpmcp.Description("What the agent does (manual submission)")),
		mcpmcp.WithString("url", mcpmcp.Description("Agent endpoint URL (manual submission)")),
		mcpmcp.WithString("platform", mcpmcp.Description("Platform the agent runs on (default custom)")),
		mcpmcp.WithString("type", mcpmcp.Description("agent or service (default agent)")),
		mcpmcp.WithString("tags", mcpmcp.Description("Comma-separated tags (manual submission)")),
	), registerAgentHandler(dirSvc))

	s.AddTool(mcpmcp.NewTool("directory_stats",
		mcpmcp.WithDescription("Directory totals: agents, skills, platforms, agent and service counts."),
	), directoryStatsHandler(dirSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func searchAgentsHandler(dirSvc *directorysvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		// Route through ParseQuery so MCP and REST share defaults and clamping.
		v := url.Values{}
		for _, key := range []string{"q", "platform", "tag", "type", "sort"} {
			if s := mcpmcp.ParseString(req, key, ""); s != "" {
				v.Set(key, s)
			}
		}
		if n := mcpmcp.ParseInt(req, "limit", 0); n != 0 {
			v.Set("limit", strconv.Itoa(n))
		}
		if n := mcpmcp.ParseInt(req, "offset", 0); n != 0 {
			v.Set("offset", strconv.Itoa(n))
		}

		listings, err := dirSvc.List(ctx, domainagent.ParseQuery(v))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		if listings == nil {
			listings = []domainagent.Listing{}
		}
		return jsonResult(listings)
	}
}

func getAgentInfoHandler(dirSvc *directorysvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		name := mcpmcp.ParseString(req, "name", "")
		if name == "" {
			return mcpmcp.NewToolResultText("error: name is required"), nil
		}

		l, err := dirSvc.Lookup(ctx, name)
		if errors.Is(err, domainagent.ErrNotFound) {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: agent %q not found", name)), nil
		}
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(l.Detail())
	}
}

func registerAgentHandler(dirSvc *directorysvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		platform := mcpmcp.ParseString(req, "platform", "")
		typ := domainagent.Type(mcpmcp.ParseString(req, "type", ""))

		var (
			l       domainagent.Listing
			created bool
			err     error
		)
		if cardURL := mcpmcp.ParseString(req, "card_url", ""); cardURL != "" {
			l, created, err = dirSvc.Import(ctx, directorysvc.ImportRequest{CardURL: cardURL, Platform: platform, Type: typ})
		} else {
			l, created, err = dirSvc.Register(ctx, domainagent.Registration{
				Name:        mcpmcp.ParseString(req, "name", ""),
				Description: mcpmcp.ParseString(req, "description", ""),
				URL:         mcpmcp.ParseString(req, "url", ""),
				Platform:    platform,
				Type:        typ,
				Tags:        domainagent.SplitList(mcpmcp.ParseString(req, "tags", "")),
			})
		}
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		return jsonResult(map[string]any{"created": created, "agent": l})
	}
}

func directoryStatsHandler(dirSvc *directorysvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		st, err := dirSvc.Stats(ctx)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(st)
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}
