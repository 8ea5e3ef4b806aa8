package search

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

//go:embed actions.toml
var actionsTOML []byte

const (
	maxEmptyQueryActions = 6
	argPlaceholder       = "{arg}"
	minNumericDigits     = 3
)

// ActionKind tells whether an action takes an argument from the query.
type ActionKind int

const (
	ActionStatic ActionKind = iota
	ActionQueryParam
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ActionKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "static":
		*k = ActionStatic
	case "query_param":
		*k = ActionQueryParam
	default:
		return fmt.Errorf("unknown action kind %q", text)
	}
	return nil
}

// ActionDef is one entry of the action table.
type ActionDef struct {
	ID          string     `toml:"id"`
	Title       string     `toml:"title"`
	TitleFormat string     `toml:"title_format"`
	Subtitle    string     `toml:"subtitle"`
	Kind        ActionKind `toml:"kind"`
	Keywords    []string   `toml:"keywords"`
	ShowOnEmpty bool       `toml:"show_on_empty"`
	// Verbs introduce an argument for query-param actions ("call 555").
	Verbs []string `toml:"verbs"`
	// Numeric lets a bare phone-number-like query become the argument.
	Numeric bool `toml:"numeric"`
}

type actionTable struct {
	VerbTriggers []string    `toml:"verb_triggers"`
	Actions      []ActionDef `toml:"actions"`
}

// ActionMatcher turns a query into quick actions.
type ActionMatcher struct {
	defs     []ActionDef
	triggers map[string]bool
}

// NewActionMatcher builds a matcher from an action table and the verbs that
// may introduce a static action.
func NewActionMatcher(defs []ActionDef, verbTriggers []string) *ActionMatcher {
	triggers := make(map[string]bool, len(verbTriggers))
	for _, v := range verbTriggers {
		triggers[strings.ToLower(v)] = true
	}
	return &ActionMatcher{defs: append([]ActionDef(nil), defs...), triggers: triggers}
}

// DefaultActionMatcher loads the embedded action table.
func DefaultActionMatcher() (*ActionMatcher, error) {
	var table actionTable
	if err := toml.Unmarshal(actionsTOML, &table); err != nil {
		return nil, fmt.Errorf("parsing actions.toml: %w", err)
	}
	return NewActionMatcher(table.Actions, table.VerbTriggers), nil
}

// Match returns the actions that apply to query, in table order.
func (m *ActionMatcher) Match(query string) []ActionResult {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return m.emptyQueryActions()
	}

	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)
	first := words[0]
	rest := strings.TrimSpace(trimmed[len(strings.Fields(trimmed)[0]):])

	var out []ActionResult
	for _, def := range m.defs {
		switch def.Kind {
		case ActionStatic:
			if m.staticMatches(def, lower, first) {
				out = append(out, ActionResult{ActionID: def.ID, Title: def.Title, Subtitle: def.Subtitle})
			}
		case ActionQueryParam:
			if arg, ok := queryArgument(def, trimmed, first, rest); ok {
				out = append(out, ActionResult{
					ActionID: def.ID,
					Title:    strings.ReplaceAll(def.TitleFormat, argPlaceholder, arg),
					Subtitle: def.Subtitle,
					Argument: arg,
				})
			}
		}
	}
	return out
}

func (m *ActionMatcher) emptyQueryActions() []ActionResult {
	var out []ActionResult
	for _, def := range m.defs {
		if def.Kind != ActionStatic || !def.ShowOnEmpty {
			continue
		}
		out = append(out, ActionResult{ActionID: def.ID, Title: def.Title, Subtitle: def.Subtitle})
		if len(out) == maxEmptyQueryActions {
			break
		}
	}
	return out
}

func (m *ActionMatcher) staticMatches(def ActionDef, lower, first string) bool {
	if !m.triggers[first] {
		return false
	}
	if first == "new" || first == "compose" {
		return true
	}
	for _, kw := range def.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func queryArgument(def ActionDef, trimmed, first, rest string) (string, bool) {
	for _, verb := range def.Verbs {
		if first == strings.ToLower(verb) && rest != "" {
			return rest, true
		}
	}
	if def.Numeric && looksNumeric(trimmed) {
		return trimmed, true
	}
	return "", false
}

// looksNumeric accepts phone-number-like input: at least three digits and
// nothing but digits, '+', '-', spaces and parentheses.
func looksNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= minNumericDigits
}
