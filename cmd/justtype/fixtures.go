package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/justtype/internal/capability"
	"github.com/pders01/justtype/internal/contacts"
	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/feed"
	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/storage"
)

type entriesFile struct {
	Entries   []storage.Entry `toml:"entries"`
	Favorites []string        `toml:"favorites"`
}

type contactsFile struct {
	Contacts []contacts.Contact `toml:"contacts"`
}

type notificationsFileData struct {
	Notifications []notificationFixture `toml:"notifications"`
}

type notificationFixture struct {
	Key       string          `toml:"key"`
	Package   string          `toml:"package"`
	Title     string          `toml:"title"`
	Body      string          `toml:"body"`
	People    []string        `toml:"people"`
	PostedAt  time.Time       `toml:"posted_at"`
	OpenURL   string          `toml:"open_url"`
	Dismissed bool            `toml:"dismissed"`
	Actions   []actionFixture `toml:"actions"`
}

type actionFixture struct {
	Title string `toml:"title"`
	URL   string `toml:"url"`
	// Input names the result key of a text reply. Empty means the action
	// takes no text.
	Input   string   `toml:"input"`
	Choices []string `toml:"choices"`
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func readEntries(path string) (entriesFile, error) {
	var f entriesFile
	if err := decodeFile(path, &f); err != nil {
		return f, err
	}
	for i, e := range f.Entries {
		if e.ID == "" {
			return f, fmt.Errorf("entry %d (%q) has no id", i, e.Title)
		}
	}
	return f, nil
}

// readContacts loads contacts, assigning random IDs to those without one.
func readContacts(path string) ([]contacts.Contact, error) {
	var f contactsFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	for i := range f.Contacts {
		if f.Contacts[i].ID == "" {
			f.Contacts[i].ID = uuid.NewString()
		}
	}
	return f.Contacts, nil
}

// postNotificationFixtures replays a notification file through the event
// feed and returns how many notifications it posted.
func postNotificationFixtures(index *notify.Index, opener feed.Opener, path string) (int, error) {
	var f notificationsFileData
	if err := decodeFile(path, &f); err != nil {
		return 0, err
	}

	events := notify.NewFeed(index)
	for _, n := range f.Notifications {
		s := n.surface(opener)
		events.Apply(notify.Posted{Surface: s})
		if n.Dismissed {
			events.Apply(notify.Removed{Key: s.Key})
		}
	}
	return len(f.Notifications), nil
}

func (n notificationFixture) surface(opener feed.Opener) notify.Surface {
	key := n.Key
	if key == "" {
		key = uuid.NewString()
	}
	s := notify.Surface{
		Key:      key,
		Package:  n.Package,
		Title:    n.Title,
		Body:     n.Body,
		People:   n.People,
		PostedAt: n.PostedAt,
	}
	if n.OpenURL != "" && opener != nil {
		s.Open = opener.Handle(n.OpenURL)
	} else {
		s.Open = logHandle(key, "open")
	}

	for _, a := range n.Actions {
		act := notify.Action{Title: a.Title}
		if a.URL != "" && opener != nil {
			act.Handle = opener.Handle(a.URL)
		} else {
			act.Handle = logHandle(key, a.Title)
		}
		if a.Input != "" {
			act.Input = &notify.RemoteInput{ResultKey: a.Input, Label: a.Title, Choices: a.Choices}
		}
		s.Actions = append(s.Actions, act)
	}
	return s
}

// logHandle stands in for a platform capability; sending it only logs.
func logHandle(key, action string) capability.Handle {
	return capability.Func(func(_ context.Context, p *capability.Payload) error {
		if p != nil {
			debuglog.Infof("notification %s: %s with %s=%q", key, action, p.ResultKey, p.Text)
			return nil
		}
		debuglog.Infof("notification %s: %s", key, action)
		return nil
	})
}
