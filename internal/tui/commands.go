package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/provider"
	"github.com/pders01/justtype/internal/search"
)

const executeTimeout = 5 * time.Second

type catalogLoadedMsg struct {
	snapshot catalogSnapshot
	err      error
}

type indexChangedMsg struct {
	version uint64
}

type statusMsg struct {
	text string
	kind StatusKind
	// reload asks the app to refresh its catalog snapshot.
	reload bool
}

func (a *App) loadCatalog() tea.Cmd {
	catalog := a.opts.Catalog
	return func() tea.Msg {
		snap, err := loadSnapshot(catalog)
		return catalogLoadedMsg{snapshot: snap, err: err}
	}
}

func loadSnapshot(c Catalog) (catalogSnapshot, error) {
	var snap catalogSnapshot
	entries, err := c.Entries()
	if err != nil {
		return snap, wrapErr("loading entries", err)
	}
	favorites, err := c.Favorites()
	if err != nil {
		return snap, wrapErr("loading favorites", err)
	}
	reg, err := c.Registry()
	if err != nil {
		return snap, wrapErr("loading providers", err)
	}
	snap.entries = entries
	snap.favorites = favorites
	snap.registry = reg
	return snap, nil
}

// waitForIndex blocks until the notification index changes.
func waitForIndex(ch <-chan uint64) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return indexChangedMsg{version: v}
	}
}

// activate runs the selected row.
func (a *App) activate(r row) tea.Cmd {
	switch r.kind {
	case rowNotificationAction:
		return a.executeAction(r.notificationKey, r.action.Index, "")
	case rowItem:
	default:
		return nil
	}

	switch it := r.item.(type) {
	case search.AppResult:
		return a.launchEntry(it.EntryID, r.title)
	case search.NotificationResult:
		return a.openNotification(it.NotificationKey)
	case search.SearchTemplateResult:
		cfg, ok := a.snapshot.registry.Lookup(it.ProviderID)
		if !ok || !cfg.HasTemplate() {
			return status(MsgNoSearchEngine, StatusWarn)
		}
		return a.openURL(provider.ExpandTemplate(cfg.URLTemplate, it.Query))
	case search.ActionResult:
		return a.runAction(it)
	case search.ContactResult:
		return status(fmt.Sprintf("%s %s", it.Title, it.Subtitle), StatusInfo)
	}
	return nil
}

func (a *App) launchEntry(id, title string) tea.Cmd {
	catalog := a.opts.Catalog
	now := a.now()
	return func() tea.Msg {
		if err := catalog.MarkLaunched(id, now); err != nil {
			return statusMsg{text: wrapErr("launch", err).Error(), kind: StatusError}
		}
		return statusMsg{text: MsgLaunched(title), kind: StatusSuccess, reload: true}
	}
}

func (a *App) openNotification(key string) tea.Cmd {
	exec := a.opts.Executor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
		defer cancel()
		text, kind := describeResult(exec.ExecuteOpen(ctx, key))
		return statusMsg{text: text, kind: kind}
	}
}

func (a *App) executeAction(key string, index int, text string) tea.Cmd {
	exec := a.opts.Executor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
		defer cancel()
		msg, kind := describeResult(exec.ExecuteAction(ctx, key, index, text))
		return statusMsg{text: msg, kind: kind}
	}
}

// runAction handles smart and quick actions. Only web searches leave the
// terminal; the rest report what would be started.
func (a *App) runAction(act search.ActionResult) tea.Cmd {
	switch act.ActionID {
	case search.SmartSearchWebID, "search_web":
		cfg, ok := a.defaultSearch()
		if !ok {
			return status(MsgNoSearchEngine, StatusWarn)
		}
		return a.openURL(provider.ExpandTemplate(cfg.URLTemplate, act.Argument))
	case search.SmartCallID, "call":
		return status("Calling "+act.Argument, StatusInfo)
	case search.SmartTextID, "text":
		return status("Texting "+act.Argument, StatusInfo)
	default:
		debuglog.Debugf("quick action %s selected", act.ActionID)
		return status(act.Title, StatusInfo)
	}
}

func (a *App) defaultSearch() (provider.Config, bool) {
	reg := a.snapshot.registry
	if reg == nil {
		return provider.Config{}, false
	}
	if cfg, ok := reg.Lookup(reg.DefaultSearchID()); ok && cfg.Enabled && cfg.HasTemplate() {
		return cfg, true
	}
	for _, cfg := range reg.ByCategory(provider.CategorySearch) {
		if cfg.HasTemplate() {
			return cfg, true
		}
	}
	return provider.Config{}, false
}

func (a *App) openURL(rawURL string) tea.Cmd {
	opener := a.opts.Opener
	return func() tea.Msg {
		if opener == nil {
			return statusMsg{text: rawURL, kind: StatusInfo}
		}
		if err := opener.Open(rawURL); err != nil {
			return statusMsg{text: wrapErr("open", err).Error(), kind: StatusError}
		}
		return statusMsg{text: "Opened " + truncateMiddle(rawURL, 60), kind: StatusSuccess}
	}
}

func status(text string, kind StatusKind) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, kind: kind}
	}
}
