package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateValidator(t *testing.T) {
	v := NewTemplateValidator()

	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{name: "google", template: "https://www.google.com/search?q={searchTerms}"},
		{name: "placeholder in path", template: "https://en.wikipedia.org/wiki/{searchTerms}"},
		{name: "plain http", template: "http://search.local/?q={searchTerms}"},
		{name: "empty", template: "  ", wantErr: true},
		{name: "no placeholder", template: "https://example.org/search", wantErr: true},
		{name: "javascript scheme", template: "javascript:alert('{searchTerms}')", wantErr: true},
		{name: "no host", template: "https:///?q={searchTerms}", wantErr: true},
		{name: "placeholder in host", template: "https://{searchTerms}.example.org/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.template)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeedURLValidator(t *testing.T) {
	secure := NewFeedURLValidator()
	permissive := NewPermissiveFeedURLValidator()

	tests := []struct {
		name      string
		input     string
		want      string
		secureErr bool
	}{
		{name: "adds https", input: "blog.golang.org/feed.atom", want: "https://blog.golang.org/feed.atom"},
		{name: "lowercases host", input: "https://Blog.Golang.org/feed.atom", want: "https://blog.golang.org/feed.atom"},
		{name: "localhost", input: "http://localhost:8080/feed.xml", want: "http://localhost:8080/feed.xml", secureErr: true},
		{name: "private ip", input: "http://192.168.1.10/rss", want: "http://192.168.1.10/rss", secureErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := secure.ValidateAndNormalize(tt.input)
			if tt.secureErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			got, err = permissive.ValidateAndNormalize(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "ftp://example.org/feed", "https://example.org/<script>", "https://example.org/a/../b"} {
		_, err := permissive.ValidateAndNormalize(bad)
		assert.Error(t, err, bad)
	}
}
