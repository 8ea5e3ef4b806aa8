// Package contacts keeps a full-text index of address-book entries and turns
// queries into contact candidates for the search engine.
package contacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/search"
)

// DefaultProviderID is the provider ID stamped on results when none is given.
const DefaultProviderID = "contacts"

const minQueryLength = 2

// Contact is one address-book entry.
type Contact struct {
	ID           string   `toml:"id" json:"id"`
	Name         string   `toml:"name" json:"name"`
	Phones       []string `toml:"phones" json:"phones,omitempty"`
	Email        string   `toml:"email" json:"email,omitempty"`
	Organization string   `toml:"organization" json:"organization,omitempty"`
}

// PrimaryPhone returns the first non-blank phone number.
func (c Contact) PrimaryPhone() string {
	for _, p := range c.Phones {
		if p = strings.TrimSpace(p); p != "" {
			return p
		}
	}
	return ""
}

// Directory is a bleve-backed contact index.
type Directory struct {
	idx        bleve.Index
	providerID string
}

// Open opens the index at path, creating it when missing.
func Open(path, providerID string) (*Directory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating contacts index directory: %w", err)
	}

	idx, err := bleve.Open(path)
	if err != nil {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating contacts index: %w", err)
		}
	}
	return newDirectory(idx, providerID), nil
}

// NewInMemory returns a directory that is not persisted.
func NewInMemory(providerID string) (*Directory, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating contacts index: %w", err)
	}
	return newDirectory(idx, providerID), nil
}

func newDirectory(idx bleve.Index, providerID string) *Directory {
	if providerID == "" {
		providerID = DefaultProviderID
	}
	return &Directory{idx: idx, providerID: providerID}
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	name.IncludeTermVectors = true

	org := bleve.NewTextFieldMapping()
	org.Analyzer = standard.Name
	org.Store = true

	email := bleve.NewTextFieldMapping()
	email.Analyzer = standard.Name
	email.Store = false

	phone := bleve.NewTextFieldMapping()
	phone.Analyzer = standard.Name
	phone.Store = true

	// Digits only, so "5550100" finds "+1 555-0100".
	digits := bleve.NewTextFieldMapping()
	digits.Analyzer = keyword.Name
	digits.Store = false

	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("organization", org)
	dm.AddFieldMappingsAt("email", email)
	dm.AddFieldMappingsAt("phone", phone)
	dm.AddFieldMappingsAt("digits", digits)

	im.DefaultMapping = dm
	return im
}

// Index adds or replaces contacts.
func (d *Directory) Index(contacts []Contact) error {
	batch := d.idx.NewBatch()
	for _, c := range contacts {
		if c.ID == "" {
			return fmt.Errorf("contact %q has no id", c.Name)
		}
		primary := c.PrimaryPhone()
		if err := batch.Index(c.ID, map[string]any{
			"name":         c.Name,
			"organization": c.Organization,
			"email":        c.Email,
			"phone":        primary,
			"digits":       phoneDigits(c.Phones),
		}); err != nil {
			return fmt.Errorf("indexing contact %s: %w", c.ID, err)
		}
	}
	if err := d.idx.Batch(batch); err != nil {
		return fmt.Errorf("writing contacts batch: %w", err)
	}
	debuglog.Debugf("indexed %d contacts", len(contacts))
	return nil
}

// Remove deletes a contact by ID.
func (d *Directory) Remove(id string) error {
	return d.idx.Delete(id)
}

// Count reports how many contacts are indexed.
func (d *Directory) Count() (int, error) {
	n, err := d.idx.DocCount()
	return int(n), err
}

// Close releases the index.
func (d *Directory) Close() error {
	return d.idx.Close()
}

// Lookup returns up to limit contacts matching query, best first. Queries
// shorter than two characters return nothing.
func (d *Directory) Lookup(query string, limit int) ([]search.ContactResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength || limit <= 0 {
		return nil, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		for _, f := range []struct {
			field string
			boost float64
		}{
			{"name", 4.0},
			{"organization", 2.0},
			{"email", 1.0},
			{"phone", 1.0},
		} {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.field)
			mq.SetBoost(f.boost)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.field)
			pq.SetBoost(f.boost * 0.9)
			qs = append(qs, pq)
		}
	}
	if ds := digitsOf(query); len(ds) >= minQueryLength && len(ds) == countDigitLike(query) {
		pq := bleve.NewPrefixQuery(ds)
		pq.SetField("digits")
		pq.SetBoost(3.0)
		qs = append(qs, pq)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"name", "phone"}
	req.SortBy([]string{"-_score", "_id"})
	res, err := d.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}

	out := make([]search.ContactResult, 0, len(res.Hits))
	for _, h := range res.Hits {
		r := search.ContactResult{ProviderID: d.providerID, StableID: h.ID}
		if name, ok := h.Fields["name"].(string); ok {
			r.Title = name
		}
		if phone, ok := h.Fields["phone"].(string); ok {
			r.Subtitle = phone
		}
		out = append(out, r)
	}
	return out, nil
}

// phoneDigits returns one digits-only term per phone number.
func phoneDigits(phones []string) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if ds := digitsOf(p); ds != "" {
			out = append(out, ds)
		}
	}
	return out
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// countDigitLike returns the digit count when s looks like a phone number,
// or -1 when it contains anything else.
func countDigitLike(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			n++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return -1
		}
	}
	return n
}
