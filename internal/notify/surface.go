package notify

import (
	"time"

	"github.com/pders01/justtype/internal/capability"
)

// RemoteInput describes free-text input an action accepts, such as a reply.
type RemoteInput struct {
	ResultKey string
	Label     string
	Choices   []string
}

// Action is one executable verb attached to a notification.
type Action struct {
	Title  string
	Handle capability.Handle
	Input  *RemoteInput
	Icon   string
}

// RequiresTextInput reports whether the action accepts typed text.
func (a Action) RequiresTextInput() bool {
	return a.Input != nil
}

// Surface is the index's view of one system notification. Surfaces are
// owned by the Index; values handed out are copies.
type Surface struct {
	Key     string
	Package string
	Title   string
	Body    string
	// People holds person names extracted from the notification.
	People   []string
	Open     capability.Handle
	Actions  []Action
	PostedAt time.Time
	Live     bool
	// DismissedAt is zero while the surface is live.
	DismissedAt time.Time
}

// Dismissed reports whether the surface has been dismissed.
func (s Surface) Dismissed() bool {
	return !s.DismissedAt.IsZero()
}

func (s Surface) clone() Surface {
	c := s
	if s.People != nil {
		c.People = append([]string(nil), s.People...)
	}
	if s.Actions != nil {
		c.Actions = make([]Action, len(s.Actions))
		for i, a := range s.Actions {
			if a.Input != nil {
				in := *a.Input
				in.Choices = append([]string(nil), a.Input.Choices...)
				a.Input = &in
			}
			c.Actions[i] = a
		}
	}
	return c
}

// historical strips every capability from s and stamps the dismissal time.
func (s Surface) historical(at time.Time) Surface {
	h := s.clone()
	h.Live = false
	h.Open = nil
	h.Actions = nil
	h.DismissedAt = at
	return h
}
