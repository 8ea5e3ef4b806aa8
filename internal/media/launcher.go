// Package media opens URLs with the desktop's default handler and exposes
// that as a capability handle.
package media

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"strings"

	"github.com/pders01/justtype/internal/capability"
	"github.com/pders01/justtype/internal/config"
	"github.com/pders01/justtype/internal/debuglog"
)

type Type int

const (
	TypeUnknown Type = iota
	TypeVideo
	TypeImage
	TypeAudio
	TypePDF
)

var fallbackOpeners = []string{"xdg-open", "open", "wslview"}

var extensionTypes = map[string]Type{
	".mp4": TypeVideo, ".webm": TypeVideo, ".mkv": TypeVideo, ".avi": TypeVideo, ".mov": TypeVideo,
	".jpg": TypeImage, ".jpeg": TypeImage, ".png": TypeImage, ".gif": TypeImage, ".webp": TypeImage, ".svg": TypeImage,
	".mp3": TypeAudio, ".ogg": TypeAudio, ".wav": TypeAudio, ".flac": TypeAudio, ".m4a": TypeAudio, ".aac": TypeAudio, ".opus": TypeAudio,
	".pdf": TypePDF,
}

// DetectType guesses the media type of a URL from its path extension.
func DetectType(rawURL string) Type {
	u, err := url.Parse(rawURL)
	if err != nil {
		return TypeUnknown
	}
	return extensionTypes[strings.ToLower(path.Ext(u.Path))]
}

// Playable reports whether t is audio or video.
func (t Type) Playable() bool {
	return t == TypeVideo || t == TypeAudio
}

// StartFunc starts a detached process.
type StartFunc func(name string, args ...string) error

// Launcher opens URLs with an external command.
type Launcher struct {
	opener string
	start  StartFunc
}

// NewLauncher uses the configured opener, falling back to the first common
// opener found on PATH.
func NewLauncher(cfg *config.Config) *Launcher {
	opener := cfg.Media.DefaultOpener
	if opener != "start" && findCommand(opener) == "" {
		if found := findCommand(fallbackOpeners...); found != "" {
			opener = found
		}
	}
	return &Launcher{opener: opener, start: startDetached}
}

// NewLauncherWith returns a launcher that runs opener through start.
func NewLauncherWith(opener string, start StartFunc) *Launcher {
	return &Launcher{opener: opener, start: start}
}

// Open hands rawURL to the opener. Only http and https URLs are accepted.
func (l *Launcher) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q", rawURL)
	}
	if l.opener == "" {
		return fmt.Errorf("no application found to open URL")
	}

	name, args := l.opener, []string{rawURL}
	if name == "start" {
		// start is a cmd builtin; the empty string is the window title.
		name, args = "cmd", []string{"/c", "start", "", rawURL}
	}
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.opener, err)
	}
	debuglog.Debugf("opened %s with %s", rawURL, l.opener)
	return nil
}

// Handle returns a capability that opens rawURL when sent.
func (l *Launcher) Handle(rawURL string) capability.Handle {
	return capability.Func(func(ctx context.Context, _ *capability.Payload) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return l.Open(rawURL)
	})
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if cmd == "" {
			continue
		}
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
