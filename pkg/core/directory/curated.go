// Package directory holds a curated seed list of well-known venture firms.
// It answers common lookups instantly and anchors entity resolution for
// firms whose EDGAR filer name differs from their brand name.
package directory

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed firms.yaml
var firmsYAML []byte

// Firm is one curated directory entry. Only Name and CIK are guaranteed;
// the rest is best-effort color.
type Firm struct {
	Name            string   `yaml:"name" json:"name"`
	Aliases         []string `yaml:"aliases" json:"aliases,omitempty"`
	Website         string   `yaml:"website" json:"website,omitempty"`
	CIK             string   `yaml:"cik" json:"cik"`
	Location        string   `yaml:"location" json:"location,omitempty"`
	Focus           []string `yaml:"focus" json:"focus,omitempty"`
	AUMEstimate     string   `yaml:"aum_estimate" json:"aum_estimate,omitempty"`
	NotablePartners []string `yaml:"notable_partners" json:"notable_partners,omitempty"`
}

var (
	loadOnce sync.Once
	firms    []Firm
)

func load() []Firm {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(firmsYAML, &firms); err != nil {
			// The list is embedded at build time; a parse failure is a
			// packaging bug, not a runtime condition.
			panic("directory: embedded firms.yaml is invalid: " + err.Error())
		}
	})
	return firms
}

// All returns the full curated list.
func All() []Firm {
	src := load()
	out := make([]Firm, len(src))
	copy(out, src)
	return out
}

// Search matches query against firm names and aliases, case-insensitive
// substring. Results dedupe by normalized name and sort shortest-name
// first, then alphabetically, so the closest brand match leads.
func Search(query string, limit int) []Firm {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}

	seen := make(map[string]bool)
	var matches []Firm
	for _, firm := range load() {
		normalized := strings.ToLower(strings.TrimSpace(firm.Name))
		if seen[normalized] {
			continue
		}
		if matchesFirm(firm, q) {
			seen[normalized] = true
			matches = append(matches, firm)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if len(matches[i].Name) != len(matches[j].Name) {
			return len(matches[i].Name) < len(matches[j].Name)
		}
		return matches[i].Name < matches[j].Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func matchesFirm(firm Firm, q string) bool {
	if strings.Contains(strings.ToLower(firm.Name), q) {
		return true
	}
	for _, alias := range firm.Aliases {
		if strings.Contains(strings.ToLower(alias), q) {
			return true
		}
	}
	return false
}

// ByCIK finds a curated firm by CIK, ignoring zero padding.
func ByCIK(cik string) (Firm, bool) {
	clean := strings.TrimLeft(cik, "0")
	for _, firm := range load() {
		if strings.TrimLeft(firm.CIK, "0") == clean {
			return firm, true
		}
	}
	return Firm{}, false
}

// ByName finds a curated firm by exact name or alias, case-insensitive.
func ByName(name string) (Firm, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, firm := range load() {
		if strings.ToLower(firm.Name) == needle {
			return firm, true
		}
		for _, alias := range firm.Aliases {
			if strings.ToLower(alias) == needle {
				return firm, true
			}
		}
	}
	return Firm{}, false
}
