// Package tui is the interactive "just type" front end: every keystroke
// re-runs the search engine and enter executes the selected result.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/justtype/internal/config"
	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/executor"
	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/provider"
	"github.com/pders01/justtype/internal/search"
	"github.com/pders01/justtype/internal/storage"
)

// Catalog supplies the launchable entries and provider configuration.
type Catalog interface {
	Entries() ([]storage.Entry, error)
	Favorites() ([]string, error)
	Registry() (*provider.Registry, error)
	MarkLaunched(id string, at time.Time) error
}

// ContactLookup finds contact candidates for a query.
type ContactLookup interface {
	Lookup(query string, limit int) ([]search.ContactResult, error)
}

// URLOpener opens a URL outside the terminal.
type URLOpener interface {
	Open(rawURL string) error
}

// Options wires the app. Contacts and Opener may be nil.
type Options struct {
	Config   *config.Config
	Engine   *search.Engine
	Catalog  Catalog
	Contacts ContactLookup
	Index    *notify.Index
	Executor *executor.Executor
	Opener   URLOpener
	Now      func() time.Time
}

type catalogSnapshot struct {
	entries   []storage.Entry
	favorites []string
	registry  *provider.Registry
	titles    map[string]string
}

func (s catalogSnapshot) appTitle(id string) string {
	if t, ok := s.titles[id]; ok {
		return t
	}
	return id
}

// replyTarget is the action awaiting typed text.
type replyTarget struct {
	key   string
	index int
	title string
	// query is restored when the reply finishes.
	query string
}

type App struct {
	opts       Options
	keyHandler *KeyHandler
	input      textinput.Model
	snapshot   catalogSnapshot
	state      search.State
	rows       []row
	cursor     int
	reply      *replyTarget
	status     string
	statusKind StatusKind
	width      int
	height     int
	indexCh    <-chan uint64
	unsub      func()
	err        error
}

func NewApp(opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Config == nil {
		opts.Config = config.TestConfig()
	}

	ti := textinput.New()
	ti.Placeholder = "Just type…"
	ti.Prompt = CompactLogo + " "
	ti.Focus()

	a := &App{
		opts:   opts,
		input:  ti,
		cursor: -1,
	}
	a.snapshot.registry = provider.NewRegistry(nil, 0, "")
	if opts.Index != nil {
		a.indexCh, a.unsub = opts.Index.Subscribe()
	}
	a.keyHandler = NewKeyHandler(a)
	return a
}

func (a *App) now() time.Time {
	return a.opts.Now()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.loadCatalog(),
		waitForIndex(a.indexCh),
	)
}

// Close releases the index subscription.
func (a *App) Close() {
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width
		}
		a.input.Width = inputWidth
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case catalogLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.setStatus(msg.err.Error(), StatusError)
			return a, nil
		}
		a.err = nil
		a.setSnapshot(msg.snapshot)
		a.refresh()
		return a, nil

	case indexChangedMsg:
		a.refresh()
		return a, waitForIndex(a.indexCh)

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		if msg.reload {
			return a, a.loadCatalog()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) setSnapshot(s catalogSnapshot) {
	s.titles = make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		s.titles[e.ID] = e.Title
	}
	if s.registry == nil {
		s.registry = provider.NewRegistry(nil, 0, "")
	}
	a.snapshot = s
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

// refresh re-ranks the current query. The selection stays on the same item
// when it is still present, otherwise it moves to the first item.
func (a *App) refresh() {
	query := a.input.Value()
	if a.reply != nil {
		query = a.reply.query
	}

	var selectedKey string
	if r, ok := a.selected(); ok {
		selectedKey = rowKey(r)
	}

	a.state = a.opts.Engine.Search(search.Input{
		Query:               query,
		Entries:             a.snapshot.entries,
		Favorites:           a.snapshot.favorites,
		Providers:           a.snapshot.registry,
		Contacts:            a.lookupContacts(query),
		Notifications:       a.notifications(),
		NotificationOptions: notificationOptions(a.opts.Config),
		Now:                 a.now(),
	})
	a.rows = buildRows(a.state, a.snapshot)

	a.cursor = -1
	for i, r := range a.rows {
		if !r.selectable() {
			continue
		}
		if a.cursor < 0 {
			a.cursor = i
		}
		if selectedKey != "" && rowKey(r) == selectedKey {
			a.cursor = i
			break
		}
	}
}

func (a *App) notifications() notify.Reader {
	if a.opts.Index == nil {
		return nil
	}
	return a.opts.Index.Snapshot()
}

func (a *App) lookupContacts(query string) []search.ContactResult {
	if a.opts.Contacts == nil {
		return nil
	}
	f := provider.ParseFilter(query)
	if !f.Permits(provider.CategoryContacts) || !a.snapshot.registry.IsEnabled(provider.CategoryContacts) {
		return nil
	}
	results, err := a.opts.Contacts.Lookup(f.Query, a.opts.Config.Search.ContactsLimit)
	if err != nil {
		debuglog.Warnf("contact lookup failed: %v", err)
		return nil
	}
	return results
}

func notificationOptions(cfg *config.Config) search.NotificationOptions {
	n := cfg.Notifications
	return search.NotificationOptions{
		MaxResults:  n.MaxResults,
		MatchBody:   n.MatchBody,
		MatchNames:  n.MatchNames,
		ShowActions: n.ShowActions,
	}
}

func rowKey(r row) string {
	if r.kind == rowNotificationAction {
		return r.notificationKey + "#" + r.action.Title
	}
	if r.item == nil {
		return ""
	}
	return r.item.Key()
}

func (a *App) selected() (row, bool) {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return row{}, false
	}
	return a.rows[a.cursor], true
}

// moveCursor steps over section headers.
func (a *App) moveCursor(delta int) {
	if len(a.rows) == 0 {
		return
	}
	i := a.cursor
	for {
		i += delta
		if i < 0 || i >= len(a.rows) {
			return
		}
		if a.rows[i].selectable() {
			a.cursor = i
			return
		}
	}
}

func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 80
	}

	input := renderInputFrame(a.input.View(), a.input.Focused(), width-8)
	if a.reply != nil {
		input = lipgloss.JoinVertical(lipgloss.Left,
			LiveStyle.Render(truncateEnd(a.reply.title, width-4)),
			input,
		)
	}

	var body string
	switch {
	case a.err != nil:
		body = StatusErrorStyle.Render(a.err.Error())
	case a.state.Empty() && strings.TrimSpace(a.input.Value()) == "":
		body = renderCentered(width, a.bodyHeight(), GetWelcomeMessage())
	case a.state.Empty():
		body = renderHelp(MsgNoResults)
	default:
		body = a.renderRows(width)
	}

	footer := statusStyle(a.statusKind)(truncateEnd(a.status, width-2))
	if a.status == "" {
		footer = renderHelp("↑/↓ select • enter run • esc clear • ctrl+c quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left, input, body, footer)
}

func (a *App) bodyHeight() int {
	h := a.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

// renderRows draws the visible window of rows around the cursor.
func (a *App) renderRows(width int) string {
	height := a.bodyHeight()
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := start + height
	if end > len(a.rows) {
		end = len(a.rows)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, renderRow(a.rows[i], i == a.cursor, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
