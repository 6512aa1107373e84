// Package tui is the interactive client: a small page router over the
// login, register, dashboard and not-found pages.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/itemdesk/internal/api"
	"github.com/Makepad-fr/itemdesk/internal/config"
	"github.com/Makepad-fr/itemdesk/internal/logging"
	"github.com/Makepad-fr/itemdesk/internal/model"
	"github.com/Makepad-fr/itemdesk/internal/session"
)

const sessionExpiredNotice = "Your session has expired. Please log in again."

// Backend is the remote API as the pages see it. *api.Client satisfies it.
type Backend interface {
	Login(ctx context.Context, cred model.Credentials) (model.LoginResult, error)
	Register(ctx context.Context, reg model.Registration) error
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, in model.ItemInput) (model.Item, error)
	UpdateItem(ctx context.Context, id model.ItemID, in model.ItemInput) (model.Item, error)
	DeleteItem(ctx context.Context, id model.ItemID) error
}

// Deps is what every page gets.
type Deps struct {
	Backend Backend
	Session session.Store
	Delays  config.UIConfig
	Log     *slog.Logger
}

// page is one screen. Pages are mounted fresh on every navigation.
type page interface {
	Init() tea.Cmd
	Update(tea.Msg) (page, tea.Cmd)
	View() string
}

// noticer pages can show a banner handed over by the router.
type noticer interface {
	notice(kind bannerKind, text string)
}

// scoped messages belong to one page mount; they are dropped once the user
// has navigated away.
type scoped interface {
	mountID() int
}

// failure messages carry the error of a finished request.
type failure interface {
	failed() error
}

// navigateMsg asks the router to show another route. mount 0 is
// unconditional, anything else only applies while that mount is current.
type navigateMsg struct {
	mount  int
	to     string
	notice string
}

func (m navigateMsg) mountID() int { return m.mount }

// App is the top-level model. It owns navigation; pages only ask for it.
type App struct {
	deps   Deps
	guard  session.Guard
	route  string
	mount  int
	page   page
	width  int
	height int
}

func New(deps Deps, start string) *App {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	if deps.Delays.LoginRedirectDelay == 0 {
		deps.Delays.LoginRedirectDelay = time.Second
	}
	if deps.Delays.RegisterRedirectDelay == 0 {
		deps.Delays.RegisterRedirectDelay = 2 * time.Second
	}
	if deps.Delays.BannerTTL == 0 {
		deps.Delays.BannerTTL = 3 * time.Second
	}
	a := &App{deps: deps, guard: session.NewGuard(deps.Session)}
	a.show(start, "")
	return a
}

// Route is the route currently shown.
func (a *App) Route() string { return a.route }

func (a *App) Init() tea.Cmd { return a.page.Init() }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case navigateMsg:
		if msg.mount != 0 && msg.mount != a.mount {
			return a, nil
		}
		return a, a.navigate(msg.to, msg.notice)
	}

	if s, ok := msg.(scoped); ok && s.mountID() != a.mount {
		return a, nil
	}
	if f, ok := msg.(failure); ok && guarded(a.route) && errors.Is(f.failed(), api.ErrUnauthorized) {
		a.deps.Log.Warn("session rejected, back to login", "route", a.route)
		return a, a.navigate(RouteLogin, sessionExpiredNotice)
	}

	var cmd tea.Cmd
	a.page, cmd = a.page.Update(msg)
	return a, cmd
}

func (a *App) View() string { return a.page.View() }

// navigate mounts the page for path and returns its init command.
func (a *App) navigate(path, notice string) tea.Cmd {
	a.show(path, notice)
	return a.page.Init()
}

func (a *App) show(path, notice string) {
	route := Resolve(path, a.guard)
	a.mount++
	a.route = route
	a.deps.Log.Debug("navigate", "requested", path, "route", route)

	switch route {
	case RouteLogin:
		a.page = newLoginPage(a.deps, a.mount)
	case RouteRegister:
		a.page = newRegisterPage(a.deps, a.mount)
	case RouteDashboard:
		a.page = newDashboardPage(a.deps, a.mount)
	default:
		a.page = newNotFoundPage(a.mount, route)
	}
	if n, ok := a.page.(noticer); ok && notice != "" {
		n.notice(bannerInfo, notice)
	}
	if a.width > 0 {
		a.page, _ = a.page.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
}

// Run starts the TUI on the alternate screen at route start.
func Run(deps Deps, start string) error {
	p := tea.NewProgram(New(deps, start), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// navigateAfter schedules a navigation that only happens if the page that
// asked for it is still mounted.
func navigateAfter(mount int, d time.Duration, to string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return navigateMsg{mount: mount, to: to}
	})
}

func navigateNow(mount int, to string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{mount: mount, to: to} }
}
