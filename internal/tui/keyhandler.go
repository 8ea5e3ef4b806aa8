package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type KeyHandler struct {
	app *App
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "ctrl+c":
		a.Close()
		return a, tea.Quit
	case "esc":
		return kh.handleEscape()
	case "enter":
		return kh.handleEnter()
	case "up", "ctrl+p", "shift+tab":
		if a.reply == nil {
			a.moveCursor(-1)
		}
		return a, nil
	case "down", "ctrl+n", "tab":
		if a.reply == nil {
			a.moveCursor(1)
		}
		return a, nil
	}

	return kh.delegateToTextInput(msg)
}

func (kh *KeyHandler) handleEscape() (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case a.reply != nil:
		kh.endReply()
		a.setStatus(MsgReplyCancelled, StatusInfo)
		return a, nil
	case a.input.Value() != "":
		a.input.SetValue("")
		a.setStatus("", StatusInfo)
		a.cursor = -1
		a.refresh()
		return a, nil
	default:
		a.Close()
		return a, tea.Quit
	}
}

func (kh *KeyHandler) handleEnter() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.reply != nil {
		target := *a.reply
		text := a.input.Value()
		kh.endReply()
		return a, a.executeAction(target.key, target.index, text)
	}

	r, ok := a.selected()
	if !ok {
		a.setStatus(MsgNothingSelected, StatusInfo)
		return a, nil
	}
	if r.kind == rowNotificationAction && r.action.RequiresTextInput {
		kh.beginReply(r)
		return a, nil
	}
	return a, a.activate(r)
}

// beginReply reuses the input line for the action's text.
func (kh *KeyHandler) beginReply(r row) {
	a := kh.app
	a.reply = &replyTarget{
		key:   r.notificationKey,
		index: r.action.Index,
		title: r.title,
		query: a.input.Value(),
	}
	a.input.SetValue("")
	a.input.Placeholder = "Reply…"
	a.setStatus(MsgReplyPrompt(r.title), StatusInfo)
}

func (kh *KeyHandler) endReply() {
	a := kh.app
	if a.reply == nil {
		return
	}
	a.input.SetValue(a.reply.query)
	a.input.CursorEnd()
	a.input.Placeholder = "Just type…"
	a.reply = nil
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	before := a.input.Value()

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	if a.reply == nil && a.input.Value() != before {
		a.setStatus("", StatusInfo)
		a.cursor = -1
		a.refresh()
	}
	return a, cmd
}
