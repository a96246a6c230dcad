package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/queries"
)

// RegisterResources registers read-only ranking resources.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Resource("taskrank://strategies").
		Name("Strategies").
		Description("Ranking strategies and their explanations").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			return jsonResource(uri, strategyList())
		})

	srv.Resource("taskrank://suggestions/sample").
		Name("Sample suggestions").
		Description("Top tasks from the built-in sample list under smart_balance").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if deps.Suggest == nil {
				return nil, fmt.Errorf("suggestions are not available")
			}
			s, err := deps.Suggest.Handle(ctx, queries.SuggestTasksQuery{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, map[string]any{
				"generated_at": time.Now().UTC().Format(time.RFC3339),
				"suggestion":   s,
			})
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
