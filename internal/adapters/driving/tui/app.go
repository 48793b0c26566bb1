package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	list    *list.ItemList
	bar     *status.Bar
	spinner spinner.Model
	help    help.Model

	// snapshots receives state changes; unsubscribe ends the subscription.
	snapshots   <-chan domain.Snapshot
	unsubscribe func()

	// snapshot is the state being rendered.
	snapshot domain.Snapshot

	// reconciling is true while a cycle started by the TUI runs.
	reconciling bool

	// showHelp toggles the full help.
	showHelp bool

	// err holds the last error that occurred.
	err error

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, ErrMissingReconciler
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	snapshots, unsubscribe := ports.Snapshot.Subscribe()

	app := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		list:        list.NewItemList(s, km),
		bar:         status.NewBar(s, km),
		spinner:     sp,
		help:        help.New(),
		snapshots:   snapshots,
		unsubscribe: unsubscribe,
	}
	app.applySnapshot(ports.Snapshot.Snapshot())
	return app, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Close ends the snapshot subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Init implements tea.Model.
// It starts listening for state changes and runs the first cycle.
func (a *App) Init() tea.Cmd {
	a.reconciling = true
	a.bar.SetState(status.StateChecking)
	return tea.Batch(
		tea.SetWindowTitle("arrivals"),
		a.spinner.Tick,
		a.waitForSnapshot(),
		a.reconcile(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.SnapshotChanged:
		a.applySnapshot(msg.Snapshot)
		return a, a.waitForSnapshot()

	case messages.SubscriptionClosed:
		a.snapshots = nil
		return a, nil

	case messages.ReconcileRequested:
		if a.reconciling {
			return a, nil
		}
		a.reconciling = true
		a.err = nil
		a.bar.SetState(status.StateChecking)
		return a, tea.Batch(a.spinner.Tick, a.reconcile())

	case messages.ReconcileCompleted:
		a.reconciling = false
		a.handleResult(msg)
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		a.Close()
		return a, tea.Quit
	case key.Matches(msg, a.keymap.Help):
		a.showHelp = !a.showHelp
		return a, nil
	case key.Matches(msg, a.keymap.Reconcile):
		return a, func() tea.Msg { return messages.ReconcileRequested{} }
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a *App) handleResult(msg messages.ReconcileCompleted) {
	if msg.Err != nil {
		a.err = msg.Err
		if errors.Is(msg.Err, domain.ErrCycleInProgress) {
			a.bar.SetState(status.StateReady)
			a.bar.SetMessage("A check is already running")
			return
		}
		a.bar.SetState(status.StateError)
		a.bar.SetMessage(msg.Err.Error())
		return
	}

	a.err = nil
	a.bar.SetState(status.StateReady)
	if msg.Result == nil {
		a.bar.SetMessage("")
		return
	}
	if a.ports.Observer == nil {
		// No tracker feeds the subscription; render the result directly.
		a.applySnapshot(domain.Snapshot{UpdateToday: msg.Result.UpdateToday, Recents: msg.Result.Recents})
	}
	switch n := len(msg.Result.NewItems); n {
	case 0:
		a.bar.SetMessage("Nothing new")
	case 1:
		a.bar.SetMessage("1 new item")
	default:
		a.bar.SetMessage(fmt.Sprintf("%d new items", n))
	}
}

func (a *App) applySnapshot(snap domain.Snapshot) {
	a.snapshot = snap
	a.list.SetItems(snap.Recents)
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("arrivals"))
	b.WriteString("\n\n")
	b.WriteString(a.renderHeadline())
	b.WriteString("\n\n")

	// Recents are hidden until the check finishes.
	if !a.Fetching() {
		b.WriteString(a.list.View())
		b.WriteString("\n\n")
	}

	if a.showHelp {
		b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
		b.WriteString("\n\n")
	}

	b.WriteString(a.bar.View())
	return b.String()
}

func (a *App) renderHeadline() string {
	if a.Fetching() {
		return a.spinner.View() + " " + a.styles.Muted.Render(domain.HeadlineChecking)
	}
	headline := a.snapshot.Headline()
	if a.snapshot.UpdateToday {
		return a.styles.Updated.Render(headline)
	}
	return a.styles.NotUpdated.Render(headline)
}

// reconcile runs a cycle in the background.
func (a *App) reconcile() tea.Cmd {
	ctx := a.ctx
	reconciler := a.ports.Reconciler
	observer := a.ports.Observer
	return func() tea.Msg {
		result, err := reconciler.Reconcile(ctx, observer)
		return messages.ReconcileCompleted{Result: result, Err: err}
	}
}

// waitForSnapshot blocks until the next state change.
func (a *App) waitForSnapshot() tea.Cmd {
	ch := a.snapshots
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return messages.SubscriptionClosed{}
		}
		return messages.SnapshotChanged{Snapshot: snap}
	}
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.list.SetWidth(width)
	a.bar.SetWidth(width)
	a.help.Width = width
}

// Fetching reports whether a cycle is running, either one started by the
// TUI or one reported by the snapshot.
func (a *App) Fetching() bool {
	return a.reconciling || a.snapshot.Fetching
}

// Snapshot returns the state being rendered.
func (a *App) Snapshot() domain.Snapshot {
	return a.snapshot
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Width returns the terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the terminal height.
func (a *App) Height() int {
	return a.height
}
