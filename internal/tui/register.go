package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdesk/internal/api"
	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
)

type registerResultMsg struct {
	mount int
	err   error
}

func (m registerResultMsg) mountID() int  { return m.mount }
func (m registerResultMsg) failed() error { return m.err }

type registerPage struct {
	deps    Deps
	mount   int
	fields  fieldSet
	loading bool
	done    bool
	flash   flash
}

func newRegisterPage(deps Deps, mount int) *registerPage {
	return &registerPage{
		deps:  deps,
		mount: mount,
		fields: newFieldSet(
			newField(form.Name, "Full Name", "Enter your full name", false),
			newField(form.Email, "Email Address", "Enter your email", false),
			newField(form.Password, "Password", "At least 6 characters", true),
		),
		flash: flash{mount: mount},
	}
}

func (p *registerPage) Init() tea.Cmd { return p.fields.focusAt(0) }

func (p *registerPage) notice(kind bannerKind, text string) { p.flash.set(kind, text, 0) }

func (p *registerPage) registration() model.Registration {
	return model.Registration{
		Name:     p.fields.value(form.Name),
		Email:    p.fields.value(form.Email),
		Password: p.fields.value(form.Password),
	}
}

func (p *registerPage) submit() tea.Cmd {
	if p.loading || p.done {
		return nil
	}
	reg := p.registration()
	if errs := form.ValidateRegister(reg); !errs.OK() {
		p.fields.errs = errs
		return nil
	}
	p.loading = true
	p.flash.dismiss()

	backend, mount := p.deps.Backend, p.mount
	return func() tea.Msg {
		return registerResultMsg{mount: mount, err: backend.Register(context.Background(), reg)}
	}
}

func (p *registerPage) finish(msg registerResultMsg) tea.Cmd {
	p.loading = false
	if msg.err != nil {
		p.deps.Log.Info("register failed", "status", api.StatusOf(msg.err), "error", msg.err)
		return p.flash.set(bannerDanger, api.Message(msg.err, "Registration failed. Please try again."), 0)
	}
	p.done = true
	p.flash.set(bannerSuccess, "Registration successful! Redirecting to login page...", 0)
	return navigateAfter(p.mount, p.deps.Delays.RegisterRedirectDelay, RouteLogin)
}

func (p *registerPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
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
		case key.Matches(msg, keyLogin):
			if p.loading {
				return p, nil
			}
			return p, navigateNow(p.mount, RouteLogin)
		}
		if p.loading {
			return p, nil
		}
	}
	return p, p.fields.update(msg)
}

func (p *registerPage) View() string {
	button := accentStyle.Render("[ Create Account ]")
	if p.loading {
		button = mutedStyle.Render("Creating account...")
	}
	return panelString(sections(
		titleStyle.Render("Create Account")+"\n"+mutedStyle.Render("Sign up to get started"),
		p.flash.View(),
		p.fields.View(),
		button,
		mutedStyle.Render("Already have an account? ")+accentStyle.Render("ctrl+l")+mutedStyle.Render(" to sign in")+"\n"+
			helpStyle.Render("tab next • enter submit • esc dismiss • ctrl+c quit"),
	))
}
