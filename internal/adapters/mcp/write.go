package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/workspace"
)

// RegisterWriteTools adds the tools that change the object store
func RegisterWriteTools(s *server.MCPServer, w *workspace.Workspace) {
	s.AddTool(syncTool(), syncHandler(w))
	s.AddTool(setTypeTool(), setTypeHandler(w))
	s.AddTool(setPropertyTool(), setPropertyHandler(w))
}

// --- sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("sync",
		mcp.WithDescription("Rescan the package, assign types and bring the object store in line with it. The first sync materializes every node."),
	)
}

func syncHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := w.Sync(ctx, nil)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message + "\n" + FormatChanges(result.Changes)), nil
	}
}

// --- set_type ---

func setTypeTool() mcp.Tool {
	return mcp.NewTool("set_type",
		mcp.WithDescription("Lock the node type of one entry so type assignment keeps it fixed, then sync. An empty type unlocks the entry."),
		mcp.WithString("path",
			mcp.Description("Entry path relative to the package root, e.g. docs/report.pdf"),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Profile node type ID. Omit to unlock."),
		),
	)
}

func setTypeHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		typeID := req.GetString("type", "")

		var message string
		result, err := w.Sync(ctx, func(root *domain.Node) error {
			res, err := commands.NewSetTypeCommand(w.Profile, root, path, typeID).Execute(ctx)
			if err != nil {
				return err
			}
			message = res.Message
			return nil
		})
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(message + "\n" + result.Message), nil
	}
}

// --- set_property ---

func setPropertyTool() mcp.Tool {
	return mcp.NewTool("set_property",
		mcp.WithDescription("Replace the user-supplied values of one property or cross-reference of an entry, then sync. No values clears it so derived or inherited values apply again."),
		mcp.WithString("path",
			mcp.Description("Entry path relative to the package root, e.g. docs/report.pdf"),
			mcp.Required(),
		),
		mcp.WithString("property",
			mcp.Description("Property or non-hierarchical relation ID from the profile, e.g. rights or seeAlso"),
			mcp.Required(),
		),
		mcp.WithArray("values",
			mcp.Description("New values. Cross-references take a node ID or an object URI."),
			mcp.WithStringItems(),
		),
	)
}

func setPropertyHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		property := req.GetString("property", "")
		values := req.GetStringSlice("values", nil)

		var message string
		result, err := w.Sync(ctx, func(root *domain.Node) error {
			res, err := commands.NewSetPropertyCommand(w.Profile, root, path, property, values...).Execute(ctx)
			if err != nil {
				return err
			}
			message = res.Message
			return nil
		})
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(message + "\n" + result.Message), nil
	}
}
