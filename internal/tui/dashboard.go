package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdesk/internal/api"
	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
)

var (
	keyAdd     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	keyEdit    = key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit"))
	keyDelete  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	keyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyLogout  = key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout"))
	keyQuit    = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	keySave    = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	keyYes     = key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes"))
	keyNo      = key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no"))
)

type itemsLoadedMsg struct {
	mount int
	items []model.Item
	err   error
}

type itemSavedMsg struct {
	mount  int
	item   model.Item
	edited bool
	err    error
}

type itemDeletedMsg struct {
	mount int
	err   error
}

func (m itemsLoadedMsg) mountID() int  { return m.mount }
func (m itemsLoadedMsg) failed() error { return m.err }
func (m itemSavedMsg) mountID() int    { return m.mount }
func (m itemSavedMsg) failed() error   { return m.err }
func (m itemDeletedMsg) mountID() int  { return m.mount }
func (m itemDeletedMsg) failed() error { return m.err }

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ model.Item }

func (i listItem) FilterValue() string { return i.Title + " " + i.Description }

// Custom delegate: one line per item, "n. title  description"
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	line := fmt.Sprintf("%s %s  %s",
		mutedStyle.Render(fmt.Sprintf("%2d.", index+1)),
		accentStyle.Render(it.Title),
		it.Description,
	)
	line = strings.ReplaceAll(line, "\n", " ")
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

type dashMode int

const (
	modeBrowse dashMode = iota
	modeForm
	modeConfirm
)

type dashboardPage struct {
	deps  Deps
	mount int
	flash flash

	list     list.Model
	items    []model.Item
	fetching bool

	mode dashMode

	// add / edit form
	editID    model.ItemID // "" when adding
	title     textinput.Model
	desc      textarea.Model
	descFocus bool
	errs      form.Errors
	saving    bool

	// delete confirmation
	pending  *model.Item
	deleting bool
}

func newDashboardPage(deps Deps, mount int) *dashboardPage {
	l := list.New(nil, itemDelegate{}, 80, 16)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	// esc belongs to dialogs and banners
	l.KeyMap.Quit.SetKeys("q")
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keyAdd, keyEdit, keyDelete, keyRefresh, keyLogout}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter title"
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Enter description"
	ta.SetHeight(5)
	ta.ShowLineNumbers = false

	p := &dashboardPage{
		deps:     deps,
		mount:    mount,
		flash:    flash{mount: mount},
		list:     l,
		fetching: true,
		title:    ti,
		desc:     ta,
		errs:     form.Errors{},
	}
	p.setTitle()
	return p
}

func (p *dashboardPage) Init() tea.Cmd { return p.fetch() }

func (p *dashboardPage) notice(kind bannerKind, text string) { p.flash.set(kind, text, 0) }

func (p *dashboardPage) setTitle() {
	p.list.Title = fmt.Sprintf("Dashboard   %s", accentStyle.Render(fmt.Sprintf("%d Items", len(p.items))))
}

func (p *dashboardPage) fetch() tea.Cmd {
	p.fetching = true
	backend, mount := p.deps.Backend, p.mount
	return func() tea.Msg {
		items, err := backend.ListItems(context.Background())
		return itemsLoadedMsg{mount: mount, items: items, err: err}
	}
}

func (p *dashboardPage) selected() *model.Item {
	li, ok := p.list.SelectedItem().(listItem)
	if !ok {
		return nil
	}
	it := li.Item
	return &it
}

// openForm shows the add form, or the edit form when it is non-nil.
func (p *dashboardPage) openForm(it *model.Item) tea.Cmd {
	p.mode = modeForm
	p.errs = form.Errors{}
	p.editID = ""
	p.title.SetValue("")
	p.desc.SetValue("")
	if it != nil {
		p.editID = it.ID
		p.title.SetValue(it.Title)
		p.desc.SetValue(it.Description)
	}
	return p.focusTitle()
}

func (p *dashboardPage) closeForm() {
	p.mode = modeBrowse
	p.editID = ""
	p.errs = form.Errors{}
	p.title.SetValue("")
	p.desc.SetValue("")
	p.title.Blur()
	p.desc.Blur()
}

func (p *dashboardPage) focusTitle() tea.Cmd {
	p.descFocus = false
	p.desc.Blur()
	return p.title.Focus()
}

func (p *dashboardPage) focusDesc() tea.Cmd {
	p.descFocus = true
	p.title.Blur()
	return p.desc.Focus()
}

func (p *dashboardPage) input() model.ItemInput {
	return model.ItemInput{Title: p.title.Value(), Description: p.desc.Value()}
}

// save validates the form and only then calls the API.
func (p *dashboardPage) save() tea.Cmd {
	if p.saving {
		return nil
	}
	in := p.input()
	if errs := form.ValidateItem(in); !errs.OK() {
		p.errs = errs
		return nil
	}
	in = form.NormalizeItem(in)
	p.saving = true

	backend, mount, id := p.deps.Backend, p.mount, p.editID
	return func() tea.Msg {
		if id != "" {
			it, err := backend.UpdateItem(context.Background(), id, in)
			return itemSavedMsg{mount: mount, item: it, edited: true, err: err}
		}
		it, err := backend.CreateItem(context.Background(), in)
		return itemSavedMsg{mount: mount, item: it, err: err}
	}
}

func (p *dashboardPage) askDelete(it *model.Item) {
	if it == nil || p.deleting {
		return
	}
	p.pending = it
	p.mode = modeConfirm
}

func (p *dashboardPage) confirmDelete() tea.Cmd {
	it := p.pending
	p.pending = nil
	p.mode = modeBrowse
	if it == nil || p.deleting {
		return nil
	}
	p.deleting = true
	backend, mount, id := p.deps.Backend, p.mount, it.ID
	return func() tea.Msg {
		return itemDeletedMsg{mount: mount, err: backend.DeleteItem(context.Background(), id)}
	}
}

func (p *dashboardPage) cancelDelete() {
	p.pending = nil
	p.mode = modeBrowse
}

func (p *dashboardPage) logout() tea.Cmd {
	if err := p.deps.Session.Clear(); err != nil {
		return p.flash.set(bannerDanger, fmt.Sprintf("Logout failed: %v", err), 0)
	}
	return navigateNow(p.mount, RouteLogin)
}

func (p *dashboardPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(max(msg.Width-4, 20), max(msg.Height-12, 5))
		p.title.Width = max(msg.Width-12, 20)
		p.desc.SetWidth(max(msg.Width-12, 20))
		return p, nil

	case bannerTimeoutMsg:
		p.flash.expire(msg)
		return p, nil

	case itemsLoadedMsg:
		p.fetching = false
		if msg.err != nil {
			p.deps.Log.Info("list items failed", "error", msg.err)
			return p, p.flash.set(bannerDanger, "Failed to load data. Please refresh the page.", 0)
		}
		p.items = msg.items
		li := make([]list.Item, 0, len(msg.items))
		for _, it := range msg.items {
			li = append(li, listItem{it})
		}
		p.setTitle()
		return p, p.list.SetItems(li)

	case itemSavedMsg:
		p.saving = false
		if msg.err != nil {
			return p, p.flash.set(bannerDanger, api.Message(msg.err, "Failed to save data"), 0)
		}
		text := "Data added successfully!"
		if msg.edited {
			text = "Data updated successfully!"
		}
		p.closeForm()
		return p, tea.Batch(p.flash.set(bannerSuccess, text, p.deps.Delays.BannerTTL), p.fetch())

	case itemDeletedMsg:
		p.deleting = false
		if msg.err != nil {
			return p, p.flash.set(bannerDanger, "Failed to delete data", 0)
		}
		return p, tea.Batch(p.flash.set(bannerSuccess, "Data deleted successfully!", p.deps.Delays.BannerTTL), p.fetch())

	case tea.KeyMsg:
		switch p.mode {
		case modeForm:
			return p, p.updateForm(msg)
		case modeConfirm:
			switch {
			case key.Matches(msg, keyYes):
				return p, p.confirmDelete()
			case key.Matches(msg, keyNo):
				p.cancelDelete()
			}
			return p, nil
		}
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keyQuit):
			return p, tea.Quit
		case key.Matches(msg, keyDismiss) && p.flash.visible():
			p.flash.dismiss()
			return p, nil
		case key.Matches(msg, keyAdd):
			return p, p.openForm(nil)
		case key.Matches(msg, keyEdit):
			if it := p.selected(); it != nil {
				return p, p.openForm(it)
			}
			return p, nil
		case key.Matches(msg, keyDelete):
			p.askDelete(p.selected())
			return p, nil
		case key.Matches(msg, keyRefresh):
			return p, p.fetch()
		case key.Matches(msg, keyLogout):
			return p, p.logout()
		}
	}

	var cmd tea.Cmd
	if p.mode == modeForm {
		// cursor blinks and the like belong to the focused input
		if p.descFocus {
			p.desc, cmd = p.desc.Update(msg)
		} else {
			p.title, cmd = p.title.Update(msg)
		}
		return p, cmd
	}
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *dashboardPage) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "esc":
		if !p.saving {
			p.closeForm()
		}
		return nil
	case key.Matches(msg, keySave):
		return p.save()
	case msg.String() == "tab" || msg.String() == "shift+tab":
		if p.descFocus {
			return p.focusTitle()
		}
		return p.focusDesc()
	case msg.String() == "enter" && !p.descFocus:
		return p.focusDesc()
	}
	if p.saving {
		return nil
	}

	var cmd tea.Cmd
	if p.descFocus {
		before := p.desc.Value()
		p.desc, cmd = p.desc.Update(msg)
		if p.desc.Value() != before {
			p.errs.Clear(form.Description)
		}
		return cmd
	}
	before := p.title.Value()
	p.title, cmd = p.title.Update(msg)
	if p.title.Value() != before {
		p.errs.Clear(form.Title)
	}
	return cmd
}

func (p *dashboardPage) formView() string {
	heading := "Add New Item"
	action := "Save"
	if p.editID != "" {
		heading, action = "Edit Item", "Update"
	}
	if p.saving {
		action = "Saving..."
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("Title") + errorStyle.Render(" *") + "\n" + p.title.View() + "\n")
	if msg := p.errs.Get(form.Title); msg != "" {
		b.WriteString(errorStyle.Render("  "+msg) + "\n")
	}
	b.WriteString("\n" + labelStyle.Render("Description") + errorStyle.Render(" *") + "\n" + p.desc.View() + "\n")
	if msg := p.errs.Get(form.Description); msg != "" {
		b.WriteString(errorStyle.Render("  "+msg) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("ctrl+s "+action+" • tab switch field • esc cancel"))
	return modalString(heading, b.String())
}

func (p *dashboardPage) View() string {
	var body string
	switch {
	case p.fetching && len(p.items) == 0:
		body = mutedStyle.Render("Loading items...")
	case len(p.items) == 0:
		body = titleStyle.Render("No Data Available") + "\n" +
			mutedStyle.Render(`Press "a" to create your first item`)
	default:
		body = p.list.View()
	}

	switch p.mode {
	case modeForm:
		body = p.formView()
	case modeConfirm:
		body = modalString("Delete Item", fmt.Sprintf("Are you sure you want to delete %q?", p.pending.Title)+
			"\n\n"+helpStyle.Render("y delete • n cancel"))
	}

	header := bigStyle.Render("Dashboard") + "  " + mutedStyle.Render("Manage your data") + "  " +
		accentStyle.Render(fmt.Sprintf("%d Items", len(p.items)))
	footer := helpStyle.Render("a add • e edit • d delete • r refresh • o logout • q quit")
	if p.mode != modeBrowse || len(p.items) > 0 {
		footer = ""
	}
	return panelString(sections(header, p.flash.View(), body, footer))
}
