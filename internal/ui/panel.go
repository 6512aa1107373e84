package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Makepad-fr/itemdesk/internal/model"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

func visibleWidth(s string) int { return utf8.RuneCountInString(stripANSI(s)) }

// Panel draws a framed box using the current theme.
func Panel(w io.Writer, lines []string) {
	t := Current()
	// compute visible width
	maxw := 0
	for _, ln := range lines {
		if vw := visibleWidth(ln); vw > maxw {
			maxw = vw
		}
	}
	pad := func(s string) string {
		if vis := visibleWidth(s); vis < maxw {
			s = s + strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(w, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

// Truncate cuts s to max runes, ending with "..." when it had to cut.
func Truncate(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}

// ItemLines renders items as the dashboard table: row number, title,
// description, id.
func ItemLines(items []model.Item) []string {
	t := Current()
	header := fmt.Sprintf("%s  %s %s",
		C(t.Title, "Items"),
		C(t.Accent, "Total"), C(t.Title, fmt.Sprint(len(items))),
	)
	lines := []string{header, ""}
	if len(items) == 0 {
		lines = append(lines,
			C(t.Muted, "No Data Available"),
			C(t.Muted, "Add one with `itemdesk items add --title ... --description ...`"))
		return lines
	}
	titleW := 0
	for _, it := range items {
		if n := utf8.RuneCountInString(Truncate(it.Title, 30)); n > titleW {
			titleW = n
		}
	}
	for i, it := range items {
		title := Truncate(it.Title, 30)
		title += strings.Repeat(" ", titleW-utf8.RuneCountInString(title))
		lines = append(lines, fmt.Sprintf("%s %s %s %s %s",
			C(dim, fmt.Sprintf("%2d.", i+1)),
			C(t.Accent, t.Bullet),
			C(t.Title, title),
			Truncate(it.Description, 50),
			C(t.Muted, "#"+it.ID.String()),
		))
	}
	return lines
}
