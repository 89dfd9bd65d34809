package research

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Library is the read-only pre-seeded knowledge base of company/role briefs.
// It is loaded once at startup and never mutated, so concurrent lookups are
// safe without locking.
type Library struct {
	briefs map[string]*Brief
}

type presetsFile struct {
	Presets []*Brief `yaml:"presets"`
}

// LoadLibrary reads the preset briefs from a YAML file. A missing path yields
// an empty library rather than an error: presets are an optional shortcut, not
// a requirement.
func LoadLibrary(path string) (*Library, error) {
	library := &Library{briefs: make(map[string]*Brief)}

	if strings.TrimSpace(path) == "" {
		return library, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return library, nil
		}
		return nil, fmt.Errorf("reading presets file %q: %w", path, err)
	}

	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing presets file %q: %w", path, err)
	}

	for i, brief := range file.Presets {
		if brief == nil {
			continue
		}
		if strings.TrimSpace(brief.Company) == "" || strings.TrimSpace(brief.Role) == "" {
			return nil, fmt.Errorf("preset %d in %q is missing company or role", i, path)
		}
		library.briefs[presetKey(brief.Company, brief.Role)] = brief
	}

	return library, nil
}

// Lookup returns the preset brief for a company/role pair, matching
// case-insensitively on trimmed values.
func (l *Library) Lookup(company, role string) (*Brief, bool) {
	if l == nil {
		return nil, false
	}
	brief, ok := l.briefs[presetKey(company, role)]
	return brief, ok
}

// Len reports the number of loaded presets.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.briefs)
}

// Pairs lists the available company/role pairs, sorted by company then role
// so listings are stable across runs.
func (l *Library) Pairs() [][2]string {
	if l == nil {
		return nil
	}
	pairs := make([][2]string, 0, len(l.briefs))
	for _, brief := range l.briefs {
		pairs = append(pairs, [2]string{brief.Company, brief.Role})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func presetKey(company, role string) string {
	return strings.ToLower(strings.TrimSpace(company)) + "\x00" + strings.ToLower(strings.TrimSpace(role))
}
