package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdesk/internal/form"
)

type field struct {
	key   string
	label string
	input textinput.Model
}

func newField(key, label, placeholder string, secret bool) field {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return field{key: key, label: label, input: ti}
}

// fieldSet is a vertical form: one focused input, per-field errors that
// disappear as soon as the user edits the field.
type fieldSet struct {
	fields []field
	focus  int
	errs   form.Errors
}

func newFieldSet(fields ...field) fieldSet {
	fs := fieldSet{fields: fields, errs: form.Errors{}}
	fs.focusAt(0)
	return fs
}

func (fs *fieldSet) focusAt(i int) tea.Cmd {
	n := len(fs.fields)
	fs.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range fs.fields {
		if j == fs.focus {
			cmd = fs.fields[j].input.Focus()
		} else {
			fs.fields[j].input.Blur()
		}
	}
	return cmd
}

func (fs *fieldSet) next() tea.Cmd { return fs.focusAt(fs.focus + 1) }
func (fs *fieldSet) prev() tea.Cmd { return fs.focusAt(fs.focus - 1) }

func (fs *fieldSet) value(key string) string {
	for _, f := range fs.fields {
		if f.key == key {
			return f.input.Value()
		}
	}
	return ""
}

// update feeds msg to the focused input.
func (fs *fieldSet) update(msg tea.Msg) tea.Cmd {
	f := &fs.fields[fs.focus]
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		fs.errs.Clear(f.key)
	}
	return cmd
}

func (fs *fieldSet) View() string {
	var b strings.Builder
	for i, f := range fs.fields {
		label := labelStyle.Render(f.label)
		if i == fs.focus {
			label = accentStyle.Render(f.label)
		}
		b.WriteString(label + "\n" + f.input.View() + "\n")
		if msg := fs.errs.Get(f.key); msg != "" {
			b.WriteString(errorStyle.Render("  "+msg) + "\n")
		}
		if i < len(fs.fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
