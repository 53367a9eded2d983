package browse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Page scopes for key bindings.
const (
	scopeCategories = "categories"
	scopeList       = "list"
	scopeSearch     = "search"
	scopeAdvForm    = "adv-form"
	scopeAdvResults = "adv-results"
	scopeSettings   = "settings"
	scopeInfo       = "info"
)

// Abstract actions. Ctrl+C is handled directly by the update loop and is
// not rebindable.
const (
	actionUp       = "cursor-up"
	actionDown     = "cursor-down"
	actionPrevPage = "page-prev"
	actionNextPage = "page-next"
	actionSelect   = "select"
	actionBack     = "back"
	actionSearch   = "open-search"
	actionAdvanced = "open-advanced"
	actionSettings = "open-settings"
	actionInfo     = "show-info"
	actionCycle    = "cycle-value"
	actionQuit     = "quit"
)

var browseScopes = []string{scopeCategories, scopeList, scopeSearch, scopeAdvForm, scopeAdvResults}
var resultScopes = []string{scopeList, scopeSearch, scopeAdvResults}

// DefaultBindings is the built-in key map. Text-entry pages consume plain
// runes before the registry runs, so letter bindings never clash with
// typing.
func DefaultBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"up", "k"}, Action: actionUp, Description: "up", Scopes: browseScopes},
		{Keys: []string{"down", "j"}, Action: actionDown, Description: "down", Scopes: browseScopes},
		{Keys: []string{"left"}, Action: actionPrevPage, Description: "prev page", Scopes: resultScopes},
		{Keys: []string{"right"}, Action: actionNextPage, Description: "next page", Scopes: resultScopes},
		{Keys: []string{"enter"}, Action: actionSelect, Description: "select", Scopes: []string{"*"}},
		{Keys: []string{"esc"}, Action: actionBack, Description: "back", Scopes: []string{"*"}},
		{Keys: []string{"s", "/"}, Action: actionSearch, Description: "search", Scopes: []string{scopeCategories, scopeList, scopeAdvResults}},
		{Keys: []string{"a"}, Action: actionAdvanced, Description: "adv search", Scopes: []string{scopeCategories, scopeList, scopeAdvResults}},
		{Keys: []string{"o"}, Action: actionSettings, Description: "settings", Scopes: []string{scopeCategories}},
		{Keys: []string{"i"}, Action: actionInfo, Description: "details", Scopes: []string{scopeList, scopeAdvResults}},
		{Keys: []string{"tab"}, Action: actionCycle, Description: "cycle", Scopes: []string{scopeSearch, scopeAdvForm}},
		{Keys: []string{"q"}, Action: actionQuit, Description: "quit", Scopes: []string{scopeCategories}},
	}
}

type keybindingsFile struct {
	Version  int                 `toml:"version"`
	Bindings map[string][]string `toml:"bindings"`
}

// LoadBindings builds the key registry from defaults plus user overrides in
// keybindings.toml under dir. A missing file is created with the defaults;
// a user file that drifts from the merged result is rewritten.
func LoadBindings(dir string) (*KeyRegistry, error) {
	defaults := DefaultBindings()
	defaultKeys := actionKeyMap(defaults)

	path := filepath.Join(dir, "keybindings.toml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if wErr := os.WriteFile(path, []byte(renderKeybindingsTOML(defaultKeys)), 0o644); wErr != nil {
			return nil, fmt.Errorf("write %s: %w", path, wErr)
		}
	}

	var file keybindingsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	merged, changed, err := mergeBindings(file, defaultKeys)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	if changed {
		if err := os.WriteFile(path, []byte(renderKeybindingsTOML(merged)), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}

	bindings := make([]KeyBinding, len(defaults))
	copy(bindings, defaults)
	for i := range bindings {
		if keys, ok := merged[bindings[i].Action]; ok {
			bindings[i].Keys = keys
		}
	}
	return NewKeyRegistry(bindings), nil
}

func mergeBindings(file keybindingsFile, defaults map[string][]string) (map[string][]string, bool, error) {
	if file.Version == 0 {
		file.Version = 1
	}
	if file.Version != 1 {
		return nil, false, fmt.Errorf("unsupported version %d", file.Version)
	}

	merged := make(map[string][]string, len(defaults))
	for action, keys := range defaults {
		merged[action] = append([]string(nil), keys...)
	}
	for action, keys := range file.Bindings {
		a := strings.TrimSpace(action)
		if !isValidActionID(a) {
			return nil, false, fmt.Errorf("invalid action %q", action)
		}
		if _, exists := defaults[a]; !exists {
			return nil, false, fmt.Errorf("unknown action %q", a)
		}
		if len(keys) == 0 {
			return nil, false, fmt.Errorf("action %q: keys are required", a)
		}
		out := make([]string, 0, len(keys))
		for _, key := range keys {
			k := strings.ToLower(strings.TrimSpace(key))
			if k == "" {
				return nil, false, fmt.Errorf("action %q: key cannot be empty", a)
			}
			out = append(out, k)
		}
		merged[a] = out
	}

	changed := !equalActionMaps(file.Bindings, merged)
	return merged, changed, nil
}

func actionKeyMap(bindings []KeyBinding) map[string][]string {
	out := make(map[string][]string, len(bindings))
	for _, b := range bindings {
		out[b.Action] = append([]string(nil), b.Keys...)
	}
	return out
}

func renderKeybindingsTOML(bindings map[string][]string) string {
	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	var b bytes.Buffer
	b.WriteString("version = 1\n\n[bindings]\n")
	for _, action := range actions {
		b.WriteString(action)
		b.WriteString(" = ")
		b.WriteString(formatTOMLArray(bindings[action]))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatTOMLArray(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprintf("%q", value))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func equalActionMaps(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for action, keysA := range a {
		keysB, ok := b[action]
		if !ok || len(keysA) != len(keysB) {
			return false
		}
		for i := range keysA {
			if keysA[i] != keysB[i] {
				return false
			}
		}
	}
	return true
}

func isValidActionID(action string) bool {
	if action == "" {
		return false
	}
	for i, ch := range action {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			continue
		}
		if ch == '-' && i > 0 && i < len(action)-1 {
			continue
		}
		return false
	}
	return true
}
