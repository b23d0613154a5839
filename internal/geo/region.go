package geo

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poi-sync/internal/model"
)

// Rule maps addresses containing Pattern to Region.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Region  string `yaml:"region"`
}

type compiledRule struct {
	Rule
	match func(lowerAddr string) bool
}

// Match is the result of resolving an address to a region.
type Match struct {
	Region model.Region
	// Rule is the rule that fired; zero when the default region was used.
	Rule      Rule
	IsDefault bool
}

// Engine evaluates an ordered rule table against addresses. Rules are
// checked top to bottom against the lowercased address and the first match
// wins; addresses matching nothing resolve to the default region.
type Engine struct {
	rules   []compiledRule
	regions map[string]model.Region
	def     model.Region
}

// NewEngine builds an Engine. Every rule and the default must reference a
// region in regions.
func NewEngine(regions []model.Region, rules []Rule, defaultRegion string) (*Engine, error) {
	e := &Engine{regions: make(map[string]model.Region, len(regions))}
	for _, r := range regions {
		if r.Name == "" {
			return nil, eris.New("geo: region with empty name")
		}
		if _, dup := e.regions[r.Name]; dup {
			return nil, eris.Errorf("geo: duplicate region %q", r.Name)
		}
		if r.Latitude == 0 || r.Longitude == 0 {
			return nil, eris.Errorf("geo: region %q has a zero coordinate", r.Name)
		}
		e.regions[r.Name] = r
	}

	def, ok := e.regions[defaultRegion]
	if !ok {
		return nil, eris.Errorf("geo: default region %q is not defined", defaultRegion)
	}
	e.def = def

	for i, r := range rules {
		// Surrounding spaces are part of the pattern: "morro " must not
		// match inside "Morrozinho".
		pattern := strings.ToLower(r.Pattern)
		if strings.TrimSpace(pattern) == "" {
			return nil, eris.Errorf("geo: rule %d has an empty pattern", i)
		}
		if _, ok := e.regions[r.Region]; !ok {
			return nil, eris.Errorf("geo: rule %d (%q) references unknown region %q", i, r.Pattern, r.Region)
		}
		e.rules = append(e.rules, compiledRule{
			Rule:  Rule{Pattern: pattern, Region: r.Region},
			match: func(addr string) bool { return strings.Contains(addr, pattern) },
		})
	}
	return e, nil
}

// Resolve returns the region for address along with the rule that chose it.
func (e *Engine) Resolve(address string) Match {
	lower := strings.ToLower(address)
	for _, r := range e.rules {
		if r.match(lower) {
			return Match{Region: e.regions[r.Region], Rule: r.Rule}
		}
	}
	return Match{Region: e.def, IsDefault: true}
}

// Region returns the named region.
func (e *Engine) Region(name string) (model.Region, bool) {
	r, ok := e.regions[name]
	return r, ok
}

// Default returns the default region.
func (e *Engine) Default() model.Region { return e.def }

// Rules returns the rule table in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Rule
	}
	return out
}
