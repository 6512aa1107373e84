package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/itemdesk/internal/model"
)

func TestPanelAlignsBorders(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetColorForcing(false, false); SetTheme("classic") })

	var buf bytes.Buffer
	Panel(&buf, []string{"short", "a longer line", "ünïcode"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "+---------------+", lines[0])
	require.Equal(t, "| short         |", lines[1])
	require.Equal(t, "| ünïcode       |", lines[3])
	require.Equal(t, lines[0], lines[4])
}

func TestItemLines(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetColorForcing(false, false); SetTheme("classic") })

	lines := ItemLines(nil)
	require.Contains(t, lines, "No Data Available")

	lines = ItemLines([]model.Item{
		{ID: "1", Title: "Milk", Description: "two litres"},
		{ID: "2", Title: strings.Repeat("x", 40), Description: "long title"},
	})
	require.Equal(t, "Items  Total 2", lines[0])
	require.Contains(t, lines[2], " 1. - Milk")
	require.Contains(t, lines[2], "#1")
	require.Contains(t, lines[3], strings.Repeat("x", 27)+"...")
}

func TestOKAndFail(t *testing.T) {
	SetColorForcing(false, true)
	t.Cleanup(func() { SetColorForcing(false, false) })

	var buf bytes.Buffer
	OK(&buf, "logged in")
	Fail(&buf, "nope")
	FieldError(&buf, "email", "Email format is invalid")
	require.Equal(t, "✔ logged in\n✖ nope\n  email: Email format is invalid\n", buf.String())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 3))
	require.Equal(t, "ab...", Truncate("abcdefgh", 5))
	require.Equal(t, "héllo", Truncate("héllo", 5))
}
