package geo

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/poi-sync/internal/model"
)

// RuleTable is the on-disk form of a custom region table.
type RuleTable struct {
	Default string         `yaml:"default"`
	Regions []model.Region `yaml:"regions"`
	Rules   []Rule         `yaml:"rules"`
}

// LoadRules reads a YAML rule table and builds an Engine from it.
func LoadRules(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read rules file %s", path)
	}

	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, eris.Wrapf(err, "geo: parse rules file %s", path)
	}
	if table.Default == "" {
		table.Default = DefaultRegionName
	}

	e, err := NewEngine(table.Regions, table.Rules, table.Default)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: rules file %s", path)
	}

	zap.L().Info("loaded region rule table",
		zap.String("path", path),
		zap.Int("regions", len(table.Regions)),
		zap.Int("rules", len(table.Rules)),
	)
	return e, nil
}

// EngineFor returns the Engine from path, or the built-in one when path is
// empty.
func EngineFor(path string) (*Engine, error) {
	if path == "" {
		return DefaultEngine(), nil
	}
	return LoadRules(path)
}
