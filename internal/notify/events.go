package notify

import (
	"context"

	"github.com/pders01/justtype/internal/debuglog"
)

// Event is a translated notification event from the platform listener.
type Event interface {
	isEvent()
}

// Posted announces a new or updated notification.
type Posted struct {
	Surface Surface
}

// Removed announces that a notification left the shade.
type Removed struct {
	Key string
}

// PackageRemoved announces that an application was uninstalled. Its
// notifications are purged outright rather than kept as history.
type PackageRemoved struct {
	Package string
}

func (Posted) isEvent()         {}
func (Removed) isEvent()        {}
func (PackageRemoved) isEvent() {}

// Feed applies platform events to an index.
type Feed struct {
	index *Index
}

// NewFeed returns a feed writing into index.
func NewFeed(index *Index) *Feed {
	return &Feed{index: index}
}

// Apply applies one event.
func (f *Feed) Apply(ev Event) {
	switch e := ev.(type) {
	case Posted:
		f.index.Put(e.Surface)
	case Removed:
		f.index.MarkDismissed(e.Key)
	case PackageRemoved:
		n := f.index.RemoveByPackage(e.Package)
		debuglog.WithFields(map[string]interface{}{"package": e.Package, "removed": n}).Infof("package removed")
	}
}

// Run applies events until the channel closes or ctx is done.
func (f *Feed) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			f.Apply(ev)
		}
	}
}
