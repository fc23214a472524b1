package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"ipmgraph/internal/adapters/tui/styles"
	"ipmgraph/internal/application"
	"ipmgraph/internal/domain"
)

// typeTag renders the bracketed type label shown after a node name, colored
// per type. Locked and untyped nodes get their own styles.
func typeTag(n *domain.Node) string {
	var style lipgloss.Style
	switch {
	case n.Type == nil:
		style = styles.NodeUntyped
	case n.TypeLocked:
		style = styles.TypeLocked
	default:
		style = lipgloss.NewStyle().Foreground(styles.TypeColor(n.Type.ID))
	}
	return style.Render("[" + application.TypeLabel(n) + "]")
}

// keyHints renders the bindings a view accepts as one footer line
func keyHints(bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = styles.HelpKey.Render(h.Key) + " " + styles.HelpDesc.Render(h.Desc)
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// status renders the outcome of the last sync, lock or copy
func status(msg string, failed bool) string {
	switch {
	case msg == "":
		return ""
	case failed:
		return styles.ErrorMsg.Render(msg)
	default:
		return styles.Success.Render(msg)
	}
}

// RenderDetails describes one node: type, URI, file facts and properties.
// Labels are padded so the values line up.
func RenderDetails(n *domain.Node) string {
	if n == nil {
		return ""
	}
	var rows [][2]string
	add := func(label, value string) {
		rows = append(rows, [2]string{label, value})
	}

	add("path", n.RelPath())
	switch {
	case n.Type == nil:
		add("type", styles.NodeUntyped.Render("none"))
	case n.TypeLocked:
		add("type", n.Type.ID+" "+styles.TypeLocked.Render("(locked)"))
	default:
		add("type", n.Type.ID)
	}
	if n.ObjectURI != "" {
		add("uri", n.ObjectURI)
	} else {
		add("uri", styles.MutedText.Render("not materialized"))
	}

	if n.Info != nil && n.Info.IsFile {
		add("size", formatSize(n.Info.Size))
		if f, ok := n.Info.PrimaryFormat(); ok {
			add("format", fmt.Sprintf("%s (%s)", f.Name, f.MIME))
		}
		for _, alg := range n.Info.Algorithms() {
			add(string(alg), n.Info.ChecksumHex(alg))
		}
	}

	ids := make([]string, 0, len(n.Properties))
	for id := range n.Properties {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		add(id, strings.Join(n.Properties[id], ", "))
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r[0])+1)
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = styles.InputLabel.Render(padRight(r[0]+":", width)) + " " + r[1]
	}
	return strings.Join(lines, "\n")
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
