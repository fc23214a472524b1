package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ipmgraph/internal/application"
	"ipmgraph/internal/application/assign"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/workspace"
)

// RegisterReadTools adds the tools that never write to the store
func RegisterReadTools(s *server.MCPServer, w *workspace.Workspace) {
	s.AddTool(treeTool(), treeHandler(w))
	s.AddTool(assignTool(), assignHandler(w))
	s.AddTool(validateTool(), validateHandler(w))
	s.AddTool(diffTool(), diffHandler(w))
	s.AddTool(profileTool(), profileHandler(w))
	s.AddTool(exportTool(), exportHandler(w))
	s.AddTool(describeTool(), describeHandler(w))
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Scan the package and display it as a tree with the assigned node types. Locked types are marked with *."),
	)
}

func treeHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scan, _, err := w.Typed(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		RenderTree(&sb, scan.Root)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// RenderTree writes one indented line per node: name, type, object URI
func RenderTree(sb *strings.Builder, root *domain.Node) {
	domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		name := n.Name()
		if n.IsDir() {
			name += "/"
		}
		fmt.Fprintf(sb, "%s%s  [%s]", strings.Repeat("  ", n.Depth()), name, application.TypeLabel(n))
		if n.ObjectURI != "" {
			fmt.Fprintf(sb, "  %s", n.ObjectURI)
		}
		sb.WriteByte('\n')
		return nil
	})
}

// --- assign ---

func assignTool() mcp.Tool {
	return mcp.NewTool("assign",
		mcp.WithDescription("Run type assignment against the active profile and report whether a valid assignment exists."),
	)
}

func assignHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		_, result, err := w.Typed(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message + "\n" + formatViolations(result.Violations)), nil
	}
}

// --- validate ---

func validateTool() mcp.Tool {
	return mcp.NewTool("validate",
		mcp.WithDescription("Check the stored typed tree against the profile rules without changing it."),
	)
}

func validateHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := w.Store.LoadTree(ctx, w.Profile)
		if err != nil {
			return toolError(err)
		}
		if root == nil {
			return toolError(application.ErrNoSnapshot)
		}
		result, err := commands.NewValidateTreeCommand(w.Engine, root).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message + "\n" + formatViolations(result.Violations)), nil
	}
}

// --- diff ---

func diffTool() mcp.Tool {
	return mcp.NewTool("diff",
		mcp.WithDescription("Compare the package on disk with the last synced snapshot and list added, updated and deleted nodes."),
	)
}

func diffHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scan, _, err := w.Typed(ctx)
		if err != nil {
			return toolError(err)
		}
		result, err := commands.NewDiffCommand(w.Store, w.Profile, scan.Root).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message + "\n" + FormatChanges(result.Changes)), nil
	}
}

// FormatChanges lists comparisons one per line
func FormatChanges(changes []domain.NodeComparison) string {
	var sb strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&sb, "%-9s %s\n", c.Status, c.Node.RelPath())
	}
	return sb.String()
}

// --- profile ---

func profileTool() mcp.Tool {
	return mcp.NewTool("profile",
		mcp.WithDescription("Describe the active domain profile: node types, permitted children, properties and relations."),
	)
}

func profileHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewShowProfileCommand(w.Profile).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(FormatProfile(result)), nil
	}
}

// FormatProfile renders a profile summary as plain text
func FormatProfile(p *commands.ProfileResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s (%s)\nnamespace: %s\n", p.ID, p.Version, p.Name, p.Namespace)
	for _, t := range p.Types {
		root := ""
		if t.Root {
			root = " root"
		}
		fmt.Fprintf(&sb, "\n%s  %s  [%s%s]\n", t.ID, t.Label, t.Bearing, root)
		if t.Pattern != "" {
			fmt.Fprintf(&sb, "  name: %s\n", t.Pattern)
		}
		for _, c := range t.Children {
			fmt.Fprintf(&sb, "  child: %s\n", c)
		}
		for _, prop := range t.Properties {
			fmt.Fprintf(&sb, "  property: %s\n", prop)
		}
		for _, r := range t.Relations {
			fmt.Fprintf(&sb, "  relation: %s\n", r)
		}
	}
	return sb.String()
}

// --- export ---

func exportTool() mcp.Tool {
	return mcp.NewTool("export",
		mcp.WithDescription("Serialize the object store as RDF."),
		mcp.WithString("format",
			mcp.Description("Output format: turtle or ntriples. Defaults to the configured format."),
		),
	)
}

func exportHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		enc, err := w.Encoder(req.GetString("format", ""), false)
		if err != nil {
			return toolError(err)
		}
		var buf bytes.Buffer
		if _, err := commands.NewExportCommand(w.Store, enc, &buf).Execute(ctx); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}

// --- describe ---

func describeTool() mcp.Tool {
	return mcp.NewTool("describe",
		mcp.WithDescription("List every triple about one domain object."),
		mcp.WithString("uri",
			mcp.Description("Object URI"),
			mcp.Required(),
		),
	)
}

func describeHandler(w *workspace.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uri := req.GetString("uri", "")
		if uri == "" {
			return toolError(fmt.Errorf("uri is required"))
		}
		triples, err := w.Objects.Describe(ctx, uri)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		for _, t := range triples {
			fmt.Fprintf(&sb, "%s  %s\n", t.Predicate, t.Object)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatViolations(violations []assign.Violation) string {
	var sb strings.Builder
	for _, v := range violations {
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
