package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var keyBack = key.NewBinding(key.WithKeys("enter", "b"), key.WithHelp("enter", "back to dashboard"))

type notFoundPage struct {
	mount int
	route string
}

func newNotFoundPage(mount int, route string) *notFoundPage {
	return &notFoundPage{mount: mount, route: route}
}

func (p *notFoundPage) Init() tea.Cmd { return nil }

func (p *notFoundPage) Update(msg tea.Msg) (page, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keyBack):
			// the router sends a signed-out user on to login
			return p, navigateNow(p.mount, RouteDashboard)
		case key.Matches(k, keyQuit):
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p *notFoundPage) View() string {
	return panelString(sections(
		bigStyle.Render("404"),
		titleStyle.Render("Page Not Found")+"\n"+
			mutedStyle.Render("The page you are looking for does not exist: ")+warnStyle.Render(p.route),
		accentStyle.Render("[ Back to Dashboard ]"),
		helpStyle.Render("enter back to dashboard • q quit"),
	))
}
