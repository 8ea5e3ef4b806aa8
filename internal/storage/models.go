package storage

import (
	"strings"
	"time"
)

// Entry is a launchable application entry supplied by the platform scanner.
type Entry struct {
	ID           string     `json:"id" toml:"id"`
	Title        string     `json:"title" toml:"title"`
	Icon         string     `json:"icon,omitempty" toml:"icon,omitempty"`
	PackageName  string     `json:"package,omitempty" toml:"package,omitempty"`
	Pinned       bool       `json:"pinned" toml:"pinned"`
	Hidden       bool       `json:"hidden" toml:"hidden"`
	LastLaunched *time.Time `json:"last_launched,omitempty" toml:"last_launched,omitempty"`
}

// Package returns the source package of the entry. Without an explicit
// package name it is the ID up to the first '/'.
func (e Entry) Package() string {
	if e.PackageName != "" {
		return e.PackageName
	}
	if idx := strings.Index(e.ID, "/"); idx >= 0 {
		return e.ID[:idx]
	}
	return e.ID
}
