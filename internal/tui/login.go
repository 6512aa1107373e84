package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdesk/internal/api"
	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
	"github.com/Makepad-fr/itemdesk/internal/session"
)

var (
	keyNext     = key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field"))
	keyPrev     = key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field"))
	keySubmit   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	keyDismiss  = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss"))
	keyRegister = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "sign up"))
	keyLogin    = key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "sign in"))
)

type loginResultMsg struct {
	mount int
	res   model.LoginResult
	err   error
}

func (m loginResultMsg) mountID() int  { return m.mount }
func (m loginResultMsg) failed() error { return m.err }

type loginPage struct {
	deps    Deps
	mount   int
	fields  fieldSet
	loading bool
	flash   flash
}

func newLoginPage(deps Deps, mount int) *loginPage {
	return &loginPage{
		deps:  deps,
		mount: mount,
		fields: newFieldSet(
			newField(form.Email, "Email Address", "Enter your email", false),
			newField(form.Password, "Password", "Enter your password", true),
		),
		flash: flash{mount: mount},
	}
}

func (p *loginPage) Init() tea.Cmd { return p.fields.focusAt(0) }

func (p *loginPage) notice(kind bannerKind, text string) { p.flash.set(kind, text, 0) }

func (p *loginPage) credentials() model.Credentials {
	return model.Credentials{Email: p.fields.value(form.Email), Password: p.fields.value(form.Password)}
}

// submit validates locally; only a valid form reaches the network.
func (p *loginPage) submit() tea.Cmd {
	if p.loading {
		return nil
	}
	cred := p.credentials()
	if errs := form.ValidateLogin(cred); !errs.OK() {
		p.fields.errs = errs
		return nil
	}
	p.loading = true
	p.flash.dismiss()

	backend, mount := p.deps.Backend, p.mount
	return func() tea.Msg {
		res, err := backend.Login(context.Background(), cred)
		return loginResultMsg{mount: mount, res: res, err: err}
	}
}

func (p *loginPage) finish(msg loginResultMsg) tea.Cmd {
	if msg.err != nil {
		p.loading = false
		p.deps.Log.Info("login failed", "status", api.StatusOf(msg.err), "error", msg.err)
		return p.flash.set(bannerDanger, api.Message(msg.err, "Invalid email or password"), 0)
	}
	s, err := session.New(msg.res.Token)
	if err == nil {
		err = p.deps.Session.Save(s)
	}
	if err != nil {
		p.loading = false
		return p.flash.set(bannerDanger, fmt.Sprintf("Could not store session: %v", err), 0)
	}
	// loading stays on: the form is frozen until the redirect happens.
	p.flash.set(bannerSuccess, "Login successful! Redirecting to dashboard...", 0)
	return navigateAfter(p.mount, p.deps.Delays.LoginRedirectDelay, RouteDashboard)
}

func (p *loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		return p, p.finish(msg)
	case bannerTimeoutMsg:
		p.flash.expire(msg)
		return p, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keySubmit):
			return p, p.submit()
		case key.Matches(msg, keyNext):
			return p, p.fields.next()
		case key.Matches(msg, keyPrev):
			return p, p.fields.prev()
		case key.Matches(msg, keyDismiss):
			p.flash.dismiss()
			return p, nil
		case key.Matches(msg, keyRegister):
			if p.loading {
				return p, nil
			}
			return p, navigateNow(p.mount, RouteRegister)
		}
		if p.loading {
			return p, nil
		}
	}
	return p, p.fields.update(msg)
}

func (p *loginPage) View() string {
	button := accentStyle.Render("[ Sign In ]")
	if p.loading {
		button = mutedStyle.Render("Signing in...")
	}
	return panelString(sections(
		titleStyle.Render("Welcome Back")+"\n"+mutedStyle.Render("Sign in to your account"),
		p.flash.View(),
		p.fields.View(),
		button,
		mutedStyle.Render("Don't have an account? ")+accentStyle.Render("ctrl+r")+mutedStyle.Render(" to sign up")+"\n"+
			helpStyle.Render("tab next • enter submit • esc dismiss • ctrl+c quit"),
	))
}
