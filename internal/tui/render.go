package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mgomes/cdgcview/internal/catalog"
)

var tagRegex = regexp.MustCompile(`<[^>]+>`)

// StripTags removes every <...> markup tag, keeping the text around and
// between them.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// FormatRank renders the rank suffix shown after a highlight, or nothing
// when the hit carries no rank.
func FormatRank(rank *float64) string {
	if rank == nil {
		return ""
	}
	return fmt.Sprintf(" | rank: %.3f", *rank)
}

func assetTitle(a catalog.AssetHit) string {
	return fmt.Sprintf("%s (system %s)", a.Name, orDash(a.SystemID))
}

func columnTitle(c catalog.ColumnHit) string {
	return fmt.Sprintf("%s (asset %s)", c.Name, orDash(c.AssetID))
}

func nodeTitle(n catalog.LineageNode) string {
	return fmt.Sprintf("%s: %s", n.ID, n.Name)
}

func nodeDetail(n catalog.LineageNode) string {
	return "system: " + orDash(n.SystemID)
}

func edgeTitle(e catalog.LineageEdge) string {
	return fmt.Sprintf("%s -> %s", e.Source, e.Target)
}

func orDash(id catalog.ID) string {
	if id == "" {
		return "-"
	}
	return string(id)
}

func truncate(s string, width int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	return ansi.Truncate(s, width, "...")
}

// wrapText wraps s to width cells and keeps at most maxLines lines. When
// text is cut the last kept line ends in "...".
func wrapText(s string, width, maxLines int) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}

	lines := strings.Split(ansi.Wrap(s, width, ""), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	if len(lines) <= maxLines {
		return lines
	}

	lines = lines[:maxLines]
	lines[maxLines-1] = ansi.Truncate(lines[maxLines-1]+"...", width, "...")
	return lines
}

// writeDetail writes dim detail lines under a list entry. suffix always
// survives on the last line, however much of detail is cut.
func writeDetail(b *strings.Builder, detail, suffix string, width int) {
	const maxLines = 3

	lines := wrapText(detail, width, maxLines)
	if suffix != "" {
		suffixWidth := ansi.StringWidth(suffix)
		switch {
		case len(lines) == 0:
			lines = []string{strings.TrimSpace(suffix)}
		case ansi.StringWidth(lines[len(lines)-1])+suffixWidth <= width:
			lines[len(lines)-1] += suffix
		case len(lines) < maxLines:
			lines = append(lines, strings.TrimSpace(suffix))
		default:
			last := len(lines) - 1
			lines[last] = ansi.Truncate(lines[last], max(0, width-suffixWidth), "...") + suffix
		}
	}

	for _, line := range lines {
		b.WriteString("    " + snippetStyle.Render(line) + "\n")
	}
}
