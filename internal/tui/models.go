package tui

import (
	"github.com/pders01/justtype/internal/search"
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowItem
	// rowNotificationAction is an executable action listed under its
	// notification.
	rowNotificationAction
)

type row struct {
	kind     rowKind
	title    string
	subtitle string
	live     bool
	item     search.ResultItem

	notificationKey string
	action          search.NotificationActionItem
}

func (r row) selectable() bool {
	return r.kind != rowHeader
}

// labels resolves display text for app rows.
type labels interface {
	appTitle(entryID string) string
}

// buildRows flattens a search state into display rows.
func buildRows(state search.State, l labels) []row {
	var rows []row
	for _, sec := range state.Sections {
		if sec.Title != "" {
			rows = append(rows, row{kind: rowHeader, title: sec.Title})
		}
		for _, item := range sec.Items {
			rows = append(rows, itemRow(item, l))
			if n, ok := item.(search.NotificationResult); ok {
				for _, a := range n.Actions {
					rows = append(rows, row{
						kind:            rowNotificationAction,
						title:           a.Title,
						notificationKey: n.NotificationKey,
						action:          a,
					})
				}
			}
		}
	}
	return rows
}

func itemRow(item search.ResultItem, l labels) row {
	r := row{kind: rowItem, item: item}
	switch it := item.(type) {
	case search.AppResult:
		r.title = l.appTitle(it.EntryID)
	case search.ActionResult:
		r.title, r.subtitle = it.Title, it.Subtitle
	case search.ContactResult:
		r.title, r.subtitle = it.Title, it.Subtitle
	case search.SearchTemplateResult:
		r.title, r.subtitle = it.Title, it.Query
	case search.NotificationResult:
		r.title, r.subtitle, r.live = it.Title, it.Subtitle, it.IsLive
	}
	return r
}
