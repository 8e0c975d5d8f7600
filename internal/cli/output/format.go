package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, s string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + s
}

// FormatKeyValue returns a markdown list item "- **k:** v".
func FormatKeyValue(k, v string) string {
	return "- **" + k + ":** " + v
}

// Table writes rows under header. Text mode draws a box table; every other
// mode gets a markdown table.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	hdr := make(table.Row, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	t.AppendHeader(hdr)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleLight)
		t.Render()
		return
	}
	t.RenderMarkdown()
}

// KeyValues writes pairs as an aligned block in text mode and as a
// markdown list otherwise.
func (r *Renderer) KeyValues(pairs [][2]string) {
	if r.EffectiveMode() != ModeText {
		for _, kv := range pairs {
			r.Println(FormatKeyValue(kv[0], kv[1]))
		}
		r.Println("")
		return
	}
	width := 0
	for _, kv := range pairs {
		width = max(width, len(kv[0]))
	}
	for _, kv := range pairs {
		pad := strings.Repeat(" ", width-len(kv[0]))
		r.Printf("%s%s %s\n", r.styles.Bold.Render(kv[0]+":"), pad, kv[1])
	}
}
