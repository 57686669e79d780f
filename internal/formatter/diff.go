package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/jsondiff/internal/differ"
)

// DiffOptions controls RenderDiff.
type DiffOptions struct {
	NoColor bool
	// Width truncates long lines; 0 disables truncation.
	Width int
	// Context keeps this many unchanged lines around each change and folds
	// the rest into a marker line. Negative shows every line.
	Context int
}

// RenderDiff renders segments as "+ ", "- " and "  " prefixed lines.
func RenderDiff(segs []differ.Segment, opts DiffOptions) string {
	type line struct {
		kind differ.Kind
		text string
	}
	var lines []line
	for _, s := range segs {
		for _, l := range differ.SplitLines(s.Text) {
			lines = append(lines, line{kind: s.Kind, text: strings.TrimRight(l, "\r\n")})
		}
	}

	keep := make([]bool, len(lines))
	for i, l := range lines {
		if opts.Context < 0 || l.kind != differ.Unchanged {
			keep[i] = true
			if opts.Context > 0 {
				for j := max(i-opts.Context, 0); j <= min(i+opts.Context, len(lines)-1); j++ {
					keep[j] = true
				}
			}
		}
	}

	var b strings.Builder
	folded := 0
	flush := func() {
		if folded == 0 {
			return
		}
		marker := fmt.Sprintf("@@ %d unchanged %s @@", folded, plural(folded, "line", "lines"))
		if !opts.NoColor {
			marker = contextStyle.Render(marker)
		}
		b.WriteString(marker + "\n")
		folded = 0
	}

	for i, l := range lines {
		if !keep[i] {
			folded++
			continue
		}
		flush()
		text := truncate(prefix(l.kind)+l.text, opts.Width)
		if !opts.NoColor {
			switch l.kind {
			case differ.Added:
				text = addedStyle.Render(text)
			case differ.Removed:
				text = removedStyle.Render(text)
			}
		}
		b.WriteString(text + "\n")
	}
	flush()
	return b.String()
}

// RenderStats renders a one-line summary such as "2 added, 1 removed, 10 unchanged".
func RenderStats(st differ.Stats, noColor bool) string {
	if st.Identical {
		return "No differences"
	}
	added := fmt.Sprintf("%d added", st.Added)
	removed := fmt.Sprintf("%d removed", st.Removed)
	if !noColor {
		added = addedStyle.Render(added)
		removed = removedStyle.Render(removed)
	}
	return fmt.Sprintf("%s, %s, %d unchanged", added, removed, st.Unchanged)
}

func prefix(k differ.Kind) string {
	switch k {
	case differ.Added:
		return "+ "
	case differ.Removed:
		return "- "
	default:
		return "  "
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
