package tui

import (
	"fmt"

	"github.com/pders01/justtype/internal/executor"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Canonical short status messages used across the app.
const (
	MsgNoResults       = "No results"
	MsgSent            = "Sent"
	MsgDismissed       = "Notification is no longer available"
	MsgCancelled       = "Action was cancelled by its app"
	MsgReplyCancelled  = "Reply cancelled"
	MsgNoSearchEngine  = "No search provider configured"
	MsgNothingSelected = "Nothing selected"
)

func MsgLaunched(title string) string {
	return fmt.Sprintf("Launched %s", title)
}

func MsgReplyPrompt(action string) string {
	return fmt.Sprintf("%s: type a reply and press enter", action)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// describeResult turns an execution outcome into a status line.
func describeResult(res executor.Result) (string, StatusKind) {
	switch r := res.(type) {
	case executor.Success:
		return MsgSent, StatusSuccess
	case executor.NotificationDismissed:
		return MsgDismissed, StatusWarn
	case executor.IntentCancelled:
		return MsgCancelled, StatusWarn
	case executor.Error:
		return "Failed: " + r.Error(), StatusError
	default:
		return "", StatusInfo
	}
}

func statusStyle(kind StatusKind) func(...string) string {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render
	case StatusWarn:
		return StatusWarnStyle.Render
	case StatusError:
		return StatusErrorStyle.Render
	default:
		return StatusInfoStyle.Render
	}
}
