package search

import (
	"github.com/pders01/justtype/internal/notify"
)

// DefaultMaxNotifications caps each notification section.
const DefaultMaxNotifications = 5

// NotificationOptions tunes how notifications are matched and displayed.
type NotificationOptions struct {
	MaxResults  int
	MatchBody   bool
	MatchNames  bool
	ShowActions bool
}

// DefaultNotificationOptions returns the options used when none are configured.
func DefaultNotificationOptions() NotificationOptions {
	return NotificationOptions{
		MaxResults:  DefaultMaxNotifications,
		MatchBody:   true,
		MatchNames:  true,
		ShowActions: true,
	}
}

func (o NotificationOptions) limit() int {
	if o.MaxResults <= 0 {
		return DefaultMaxNotifications
	}
	return o.MaxResults
}

// RelatedNotifications returns notifications posted by any of packages.
func RelatedNotifications(src notify.Reader, packages []string, opts NotificationOptions) []NotificationResult {
	if src == nil || len(packages) == 0 {
		return nil
	}
	return toNotificationResults(src.GetByPackages(packages, opts.limit()), opts)
}

// AllNotifications returns live and historical notifications except those
// whose key is in exclude.
func AllNotifications(src notify.Reader, exclude map[string]bool, opts NotificationOptions) []NotificationResult {
	if src == nil {
		return nil
	}
	limit := opts.limit()
	var out []NotificationResult
	for _, s := range src.GetAll() {
		if exclude[s.Key] {
			continue
		}
		out = append(out, toNotificationResult(s, opts))
		if len(out) == limit {
			break
		}
	}
	return out
}

// SearchNotifications matches notifications by text.
func SearchNotifications(src notify.Reader, query string, opts NotificationOptions) []NotificationResult {
	if src == nil {
		return nil
	}
	hits := src.Search(query, notify.SearchOptions{
		IncludeLive:       true,
		IncludeHistorical: true,
		MatchBody:         opts.MatchBody,
		MatchNames:        opts.MatchNames,
		Limit:             opts.limit(),
	})
	return toNotificationResults(hits, opts)
}

func toNotificationResults(surfaces []notify.Surface, opts NotificationOptions) []NotificationResult {
	if len(surfaces) == 0 {
		return nil
	}
	out := make([]NotificationResult, len(surfaces))
	for i, s := range surfaces {
		out[i] = toNotificationResult(s, opts)
	}
	return out
}

func toNotificationResult(s notify.Surface, opts NotificationOptions) NotificationResult {
	r := NotificationResult{
		NotificationKey: s.Key,
		Title:           s.Title,
		Subtitle:        s.Body,
		Timestamp:       s.PostedAt.UnixMilli(),
		IsLive:          s.Live,
	}
	if opts.ShowActions && s.Live {
		for i, a := range s.Actions {
			r.Actions = append(r.Actions, NotificationActionItem{
				Index:             i,
				Title:             a.Title,
				RequiresTextInput: a.RequiresTextInput(),
			})
		}
	}
	return r
}
